// Package cases provides the standard library of case kinds: suites,
// file inclusion, state assignment, shell commands, Starlark scripts
// and filesystem fixtures. DefaultRegistry assembles them in their
// recognition order.
package cases
