package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lukman83/relist/internal/repost"
)

// resultPrinter returns the printer for API results in the given format.
func resultPrinter(format string) (repost.Printer, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return printJSON, nil
	case "yaml", "yml":
		return printYAML, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	plain, err := plainValue(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plain); err != nil {
		return err
	}
	return enc.Close()
}

// plainValue round-trips v through JSON so YAML sees the same field names,
// with integral numbers kept as integers rather than floats.
func plainValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return unwrapNumbers(out), nil
}

func unwrapNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = unwrapNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = unwrapNumbers(e)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
