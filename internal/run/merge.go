package run

import (
	"sort"

	"github.com/prometheusresearch/pbbt/internal/schema"
)

// PairOutputs matches each input record with the first prior output
// record that complements it, greedy and left to right. Every output
// is claimed at most once. The result is parallel to inputs, with nil
// for inputs that found no match.
func PairOutputs(inputs, outputs []*schema.Record) []*schema.Record {
	paired := make([]*schema.Record, len(inputs))
	claimed := make([]bool, len(outputs))
	for i, input := range inputs {
		for j, output := range outputs {
			if claimed[j] || !input.Complements(output) {
				continue
			}
			paired[i] = output
			claimed[j] = true
			break
		}
	}
	return paired
}

// Entry records the outcome of one case for reconciliation: the prior
// output it was paired with, the output it produced, and whether the
// two differ.
type Entry struct {
	Prior   *schema.Record
	New     *schema.Record
	Changed bool
}

// Merge reconciles a suite's prior output list with the entries of a
// training run.
//
// In purge mode the prior list is discarded: the result holds, in case
// order, the new output of every changed case and the retained prior
// output of every unchanged one, so outputs of removed cases are
// dropped.
//
// Otherwise the prior list keeps its order and its unclaimed entries.
// A cursor walks the list: a case whose prior output is present
// overwrites that position in place (when it produced a replacement)
// and moves the cursor past it, while a case that gained its first
// output is inserted at the cursor. Cases with neither prior nor new
// output leave the cursor alone.
func Merge(prior []*schema.Record, entries []Entry, purge bool) []*schema.Record {
	if purge {
		var merged []*schema.Record
		for _, e := range entries {
			out := e.Prior
			if e.Changed {
				out = e.New
			}
			if out != nil {
				merged = append(merged, out)
			}
		}
		return merged
	}

	index := make(map[*schema.Record]int, len(prior))
	for i, out := range prior {
		index[out] = i
	}

	type placement struct {
		pos    int
		record *schema.Record
	}
	var updates, inserts []placement
	cursor := 0
	for _, e := range entries {
		if e.Prior != nil {
			idx, ok := index[e.Prior]
			if !ok {
				continue
			}
			if e.Changed && e.New != nil {
				updates = append(updates, placement{idx, e.New})
			}
			if idx >= cursor {
				cursor = idx + 1
			}
			continue
		}
		// Inserts record the cursor in prior-list coordinates and do
		// not move it: several cases inserted between the same two
		// prior entries share one position.
		if e.Changed && e.New != nil {
			inserts = append(inserts, placement{cursor, e.New})
		}
	}

	merged := make([]*schema.Record, len(prior))
	copy(merged, prior)
	for _, u := range updates {
		merged[u.pos] = u.record
	}
	// Positions are prior-list coordinates, so apply the inserts back
	// to front: earlier positions stay valid, and entries sharing a
	// position come out in entry order.
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].pos < inserts[j].pos })
	for i := len(inserts) - 1; i >= 0; i-- {
		in := inserts[i]
		merged = append(merged[:in.pos], append([]*schema.Record{in.record}, merged[in.pos:]...)...)
	}
	return merged
}
