// Package run drives test execution. It owns the registry of case
// kinds, the suite selection algebra, the mutable run state, the
// reconciliation merge for training mode, and the Control object that
// threads all of them through a run.
//
// A run walks the tree of cases described by an input document. In
// check mode every case compares its observed output against the
// recorded expectation; in training mode differences are presented to
// the operator and, once accepted, reconciled back into the output
// document while preserving its order.
package run
