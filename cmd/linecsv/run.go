package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/csvmetrics"
	"github.com/oleg578/linecsv/internal/config"
	"github.com/oleg578/linecsv/internal/logging"
)

const (
	exitOK          = 0
	exitDiagnostics = 1
	exitUsage       = 2
	exitFailure     = 3
)

var errUsage = errors.New("usage: linecsv <fmt|yaml|check> [-crlf] [-metrics-file path] [-env file] [input.csv]")

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, errUsage)
		return exitUsage
	}
	command := args[0]
	switch command {
	case "fmt", "yaml", "check":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%v\n", command, errUsage)
		return exitUsage
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	crlf := fs.Bool("crlf", false, "terminate written records with \\r\\n")
	metricsFile := fs.String("metrics-file", "", "write Prometheus text metrics to this file")
	envFile := fs.String("env", ".env", "load settings from this .env file when it exists")
	if err := fs.Parse(args[1:]); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, errUsage)
		return exitUsage
	}

	if err := config.LoadEnvFiles(*envFile); err != nil {
		fmt.Fprintf(stderr, "linecsv: %v\n", err)
		return exitFailure
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "linecsv: %v\n", err)
		return exitFailure
	}
	if *crlf {
		cfg.Codec.LineEnding = "crlf"
	}
	if *metricsFile != "" {
		cfg.Metrics.File = *metricsFile
	}

	logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	ctx = logging.WithRunID(ctx, uuid.New().String())
	log := logging.WithFields(ctx, "command", command)
	log.Debug("configuration loaded", "config", cfg.String())

	reg := prometheus.NewRegistry()
	rec, err := csvmetrics.NewRecorder(reg)
	if err != nil {
		log.Error("metrics setup failed", "error", err)
		return exitFailure
	}

	code, err := execute(ctx, command, fs.Arg(0), cfg, rec, stdin, stdout)
	if err != nil {
		log.Error("command failed", "error", err)
		return exitFailure
	}

	if cfg.Metrics.File != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.File, reg); err != nil {
			log.Error("writing metrics failed", "file", cfg.Metrics.File, "error", err)
			return exitFailure
		}
	}
	return code
}

func execute(ctx context.Context, command, input string, cfg *config.Config, rec *csvmetrics.Recorder, stdin io.Reader, stdout io.Writer) (int, error) {
	log := logging.WithFields(ctx, "command", command, "input", inputName(input))

	src := stdin
	if input != "" && input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return exitFailure, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}

	r := linecsv.NewReader(src)
	r.KeepEmptyLines = cfg.Codec.KeepEmptyLines
	r.FieldsPerRecord = cfg.Codec.FieldsPerRecord
	r.Sink = linecsv.MultiSink(linecsv.NewLogSink(log), rec)

	doc, err := r.ReadAll()
	if err != nil {
		return exitFailure, fmt.Errorf("read input: %w", err)
	}
	rec.RecordsDecoded(len(doc))
	diags := r.Diagnostics()
	log.Info("document decoded", "records", len(doc), "diagnostics", len(diags))

	switch command {
	case "fmt":
		w := linecsv.NewWriter(stdout)
		w.UseCRLF = cfg.Codec.UseCRLF()
		if err := w.WriteAll(doc); err != nil {
			return exitFailure, fmt.Errorf("write output: %w", err)
		}
		if err := w.Flush(); err != nil {
			return exitFailure, fmt.Errorf("write output: %w", err)
		}
		rec.RecordsEncoded(len(doc))
	case "yaml":
		if err := writeYAML(stdout, doc); err != nil {
			return exitFailure, fmt.Errorf("write output: %w", err)
		}
	case "check":
		for _, d := range diags {
			if _, err := fmt.Fprintf(stdout, "%s: %v\n", inputName(input), d); err != nil {
				return exitFailure, fmt.Errorf("write output: %w", err)
			}
		}
		if len(diags) > 0 {
			return exitDiagnostics, nil
		}
	}
	return exitOK, nil
}

func inputName(input string) string {
	if input == "" || input == "-" {
		return "<stdin>"
	}
	return input
}
