// cmd_io.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arwahdevops/oradelta/internal/delta"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// readInput reads path, or stdin when path is "-" or empty.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func readPayload(path string, stdin io.Reader) (*delta.Payload, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	return delta.DecodePayload(data)
}

func parseLevel(s string) (delta.Level, error) {
	switch level := delta.Level(strings.ToLower(s)); level {
	case delta.LevelEntity, delta.LevelContainer, delta.LevelView:
		return level, nil
	}
	return "", fmt.Errorf("invalid level %q, expected entity, container or view", s)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// encode renders v as indented JSON or as YAML. YAML output goes through
// JSON first so both formats share the json field names.
func encode(v any, format string) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	switch format {
	case formatJSON:
		return raw, nil
	case formatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return nil, fmt.Errorf("failed to convert output to yaml: %w", err)
		}
		blockStyle(&node)
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

// blockStyle drops the flow/quoted styles the JSON parser leaves on nodes.
func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && n.Style == yaml.DoubleQuotedStyle {
		n.Style = 0
		if strings.Contains(n.Value, "\n") {
			n.Style = yaml.LiteralStyle
		}
	} else if n.Kind != yaml.ScalarNode {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
