package load

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prometheusresearch/pbbt/internal/schema"
)

// substituteRe matches `${name}` and `${name:default}` scalars.
// Group 2 includes the colon so an empty default is distinguishable
// from no default at all.
var substituteRe = regexp.MustCompile(
	`^\$\{([a-zA-Z_][0-9a-zA-Z_.-]*)(:[0-9A-Za-z~@#^&*_;:,./?=+-]*)?\}$`)

// expectation tells the walker how to interpret the next node.
type expectation int

const (
	expectAny expectation = iota
	expectRecord
	expectRecordList
)

// Loader reads test input or output records from YAML documents.
//
// A loader is bound to an ordered list of candidate schemas (the
// registry's input-type or output-type list), a substitution table for
// `${...}` scalars, and a location table that receives the source
// position of every record it constructs.
type Loader struct {
	types []*schema.Schema
	subs  map[string]any
	locs  Locations
}

// NewLoader builds a loader. subs and locs may be nil.
func NewLoader(types []*schema.Schema, subs map[string]any, locs Locations) *Loader {
	return &Loader{types: types, subs: subs, locs: locs}
}

// LoadFile reads and parses one document from the named file.
func (l *Loader) LoadFile(path string) (*schema.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return l.Load(path, f)
}

// Load parses exactly one record document from r. Zero or multiple
// documents in the stream are an error; the name is used for
// diagnostics only.
func (l *Loader) Load(name string, r io.Reader) (*schema.Record, error) {
	dec := yaml.NewDecoder(r)

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, parseErr(name, 0, "expected a test record, found an empty document")
		}
		return nil, &ParseError{File: name, Err: err}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, parseErr(name, extra.Line, "expected a single document")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, parseErr(name, 0, "expected a test record, found an empty document")
		}
		root = root.Content[0]
	}
	value, err := l.build(name, root, expectRecord)
	if err != nil {
		return nil, err
	}
	record, ok := value.(*schema.Record)
	if !ok {
		return nil, parseErr(name, root.Line, "expected a test record")
	}
	return record, nil
}

// build constructs the generic value for a node under the given
// expectation, descending recursively.
func (l *Loader) build(file string, node *yaml.Node, expect expectation) (any, error) {
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	switch expect {
	case expectRecord:
		if node.Kind != yaml.MappingNode {
			return nil, parseErr(file, node.Line, "expected a test record")
		}
		return l.buildRecord(file, node)

	case expectRecordList:
		if node.Kind != yaml.SequenceNode {
			return nil, parseErr(file, node.Line, "expected a sequence of test records")
		}
		items := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			record, err := l.build(file, item, expectRecord)
			if err != nil {
				return nil, err
			}
			items = append(items, record)
		}
		return items, nil
	}

	switch node.Kind {
	case yaml.MappingNode:
		mapping := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, err := l.mappingKey(file, node.Content[i])
			if err != nil {
				return nil, err
			}
			value, err := l.build(file, node.Content[i+1], expectAny)
			if err != nil {
				return nil, err
			}
			mapping[key] = value
		}
		return mapping, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := l.build(file, item, expectAny)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil

	case yaml.ScalarNode:
		return l.scalar(file, node)

	default:
		return nil, parseErr(file, node.Line, "unexpected node")
	}
}

// buildRecord detects the record type from the mapping's key set,
// constructs the field values with per-field expectations, and cuts the
// record, remembering its source position.
func (l *Loader) buildRecord(file string, node *yaml.Node) (*schema.Record, error) {
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, err := l.mappingKey(file, node.Content[i])
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	// First registered schema whose signature matches wins; registration
	// order encodes precedence among overlapping signatures.
	var detected *schema.Schema
	for _, candidate := range l.types {
		if candidate.Recognizes(keys) {
			detected = candidate
			break
		}
	}
	if detected == nil {
		if len(keys) == 0 {
			return nil, parseErr(file, node.Line, "expected a test record")
		}
		quoted := make([]string, len(keys))
		for i, key := range keys {
			quoted[i] = strconv.Quote(key)
		}
		return nil, parseErr(file, node.Line,
			"cannot find a test type with fields %s", strings.Join(quoted, ", "))
	}

	fieldChecks := make(map[string]schema.Check, len(detected.Fields()))
	for _, f := range detected.Fields() {
		fieldChecks[f.Key] = f.Check
	}

	mapping := make(map[string]any, len(keys))
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := keys[i/2]
		expect := expectAny
		if check, ok := fieldChecks[key]; ok {
			switch {
			case schema.IsRecord(check):
				expect = expectRecord
			case schema.IsRecordList(check):
				expect = expectRecordList
			}
		}
		value, err := l.build(file, node.Content[i+1], expect)
		if err != nil {
			return nil, err
		}
		mapping[key] = value
	}

	record, err := detected.Load(mapping)
	if err != nil {
		return nil, &ParseError{File: file, Line: node.Line, Err: err}
	}
	if l.locs != nil {
		l.locs[record] = Location{File: file, Line: node.Line}
	}
	return record, nil
}

func (l *Loader) mappingKey(file string, node *yaml.Node) (string, error) {
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return "", parseErr(file, node.Line, "found an invalid field name")
	}
	return node.Value, nil
}

// scalar converts a scalar node to its generic value, resolving
// `${...}` substitutions in plain string scalars.
func (l *Loader) scalar(file string, node *yaml.Node) (any, error) {
	switch node.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return nil, parseErr(file, node.Line, "invalid boolean %q", node.Value)
		}
		return b, nil
	case "!!int":
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, parseErr(file, node.Line, "invalid integer %q", node.Value)
		}
		return int(n), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, parseErr(file, node.Line, "invalid float %q", node.Value)
		}
		return f, nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(
			strings.Map(dropSpace, node.Value))
		if err != nil {
			return nil, parseErr(file, node.Line, "invalid binary data")
		}
		return data, nil
	default:
		if node.Style == 0 {
			if match := substituteRe.FindStringSubmatch(node.Value); match != nil {
				return l.substitute(match), nil
			}
		}
		return node.Value, nil
	}
}

// substitute resolves a `${name}` or `${name:default}` scalar against
// the variable table. An unresolved name with no default yields nil,
// never an error.
func (l *Loader) substitute(match []string) any {
	name, def := match[1], match[2]
	if value, ok := l.subs[name]; ok {
		return value
	}
	if def != "" {
		return strings.TrimPrefix(def, ":")
	}
	return nil
}

func dropSpace(r rune) rune {
	if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
		return -1
	}
	return r
}
