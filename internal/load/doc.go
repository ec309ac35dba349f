// Package load converts between YAML documents and typed records.
//
// The loader walks the yaml.v3 node tree directly rather than decoding
// into Go structs: record types are not known up front but detected
// dynamically by matching each mapping's key set against the ordered
// list of registered schemas (first match wins, so registration order
// encodes detection precedence). While descending into fields declared
// as nested records or record lists the loader switches context so that
// inner mappings are interpreted as records rather than plain maps.
//
// The dumper is the inverse: it serializes a record tree back to YAML
// deterministically, so that expected-output files stored in version
// control produce minimal reviewable diffs.
package load
