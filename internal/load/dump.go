package load

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prometheusresearch/pbbt/internal/schema"
)

// header is the provenance comment prepended to generated output files.
const header = "#\n# This file contains expected test output data generated by pbbt.\n#\n"

// Dump serializes an output record to the named file, with the
// provenance header and an explicit document start. The encoding is
// deterministic run to run so that files kept under version control
// produce minimal diffs.
func Dump(path string, record *schema.Record) error {
	data, err := Encode(record)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Encode renders a record document to YAML bytes.
func Encode(record *schema.Record) ([]byte, error) {
	node, err := recordNode(record)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return buf.Bytes(), nil
}

// recordNode serializes a record via its Dump pairs, in declaration
// order, recursing into nested record and record-list field values.
func recordNode(record *schema.Record) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, pair := range record.Dump() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}
		value, err := valueNode(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", pair.Key, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

func valueNode(v any) (*yaml.Node, error) {
	switch value := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return stringNode(value), nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)}, nil
	case float64:
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!float",
			Value: strconv.FormatFloat(value, 'g', -1, 64),
		}, nil
	case []byte:
		return binaryNode(value), nil
	case *schema.Record:
		return recordNode(value)
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range value {
			child, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case map[string]any:
		// Plain mappings carry no declaration order; sort keys so the
		// output is stable.
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range keys {
			child, err := valueNode(value[key])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("cannot serialize value of type %T", v)
	}
}

// stringNode emits text ending in a newline in literal block style, so
// captured multi-line output stays readable in the document.
func stringNode(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.HasSuffix(s, "\n") {
		node.Style = yaml.LiteralStyle
	}
	return node
}

// binaryNode emits non-text content base64-encoded under the binary
// tag, wrapped to keep lines reviewable.
func binaryNode(data []byte) *yaml.Node {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for len(encoded) > 76 {
		lines = append(lines, encoded[:76])
		encoded = encoded[76:]
	}
	lines = append(lines, encoded)
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!binary",
		Style: yaml.LiteralStyle,
		Value: strings.Join(lines, "\n") + "\n",
	}
}
