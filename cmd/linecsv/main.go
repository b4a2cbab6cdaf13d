// Command linecsv reformats, converts and checks CSV files with the linecsv
// codec.
//
// Usage:
//
//	linecsv fmt   [-crlf] [-metrics-file path] [-env file] [input.csv]
//	linecsv yaml  [-metrics-file path] [-env file] [input.csv]
//	linecsv check [-metrics-file path] [-env file] [input.csv]
//
// Input defaults to stdin. Settings not given as flags come from LINECSV_*
// environment variables, optionally loaded from a .env file.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
