package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oleg578/linecsv"
)

// writeYAML writes the data records of doc as a sequence of mappings keyed by
// the header. Keys keep column order; duplicate header names get a numeric
// suffix and values past the header are keyed columnN.
func writeYAML(w io.Writer, doc linecsv.Document) error {
	keys := headerKeys(doc.Header())

	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, row := range doc.Rows() {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for j, value := range row {
			key := fmt.Sprintf("column%d", j+1)
			if j < len(keys) {
				key = keys[j]
			}
			m.Content = append(m.Content, stringNode(key), stringNode(value))
		}
		seq.Content = append(seq.Content, m)
	}
	if len(seq.Content) == 0 {
		seq.Style = yaml.FlowStyle
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func headerKeys(header linecsv.Record) []string {
	keys := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		keys[i] = h
	}
	return keys
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
