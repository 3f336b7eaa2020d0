package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func parseOutput(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: output must be text, json or yaml, got %q", errUsage, raw)
	}
}

// emit writes text as-is, or v encoded as json or yaml.
func emit(out io.Writer, format, text string, v any) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		_, err := io.WriteString(out, text)
		return err
	}
}
