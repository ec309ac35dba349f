package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusresearch/pbbt/internal/schema"
)

func TestPairOutputs(t *testing.T) {
	inputs := []*schema.Record{
		echoIn("a", nil),
		echoIn("b", nil),
		echoIn("a", nil),
	}
	outputs := []*schema.Record{
		echoOut("b", "B"),
		echoOut("a", "A1"),
		echoOut("a", "A2"),
	}

	paired := PairOutputs(inputs, outputs)

	require.Len(t, paired, 3)
	// Greedy left-to-right: the first "a" input claims the first "a"
	// output; each output is claimed once.
	assert.Same(t, outputs[1], paired[0])
	assert.Same(t, outputs[0], paired[1])
	assert.Same(t, outputs[2], paired[2])
}

func TestPairOutputsUnmatched(t *testing.T) {
	inputs := []*schema.Record{echoIn("a", nil), echoIn("missing", nil)}
	outputs := []*schema.Record{echoOut("a", "A")}

	paired := PairOutputs(inputs, outputs)

	assert.Same(t, outputs[0], paired[0])
	assert.Nil(t, paired[1])
}

// The reconciliation scenario from the suite life cycle: prior output
// [O1 O2 O3]; the run keeps case 1, inserts a new case 4, updates
// case 2, and never reaches case 3 (its case was removed from the
// input).
func mergeScenario() (prior []*schema.Record, entries []Entry, o4, o2b *schema.Record) {
	o1 := echoOut("one", "1")
	o2 := echoOut("two", "2")
	o3 := echoOut("three", "3")
	o4 = echoOut("four", "4")
	o2b = echoOut("two", "2'")
	prior = []*schema.Record{o1, o2, o3}
	entries = []Entry{
		{Prior: o1, New: o1, Changed: false},
		{Prior: nil, New: o4, Changed: true},
		{Prior: o2, New: o2b, Changed: true},
	}
	return prior, entries, o4, o2b
}

func TestMergepositional(t *testing.T) {
	prior, entries, o4, o2b := mergeScenario()

	merged := Merge(prior, entries, false)

	require.Len(t, merged, 4)
	assert.Same(t, prior[0], merged[0])
	assert.Same(t, o4, merged[1])
	assert.Same(t, o2b, merged[2])
	assert.Same(t, prior[2], merged[3])
}

func TestMergePurge(t *testing.T) {
	prior, entries, o4, o2b := mergeScenario()

	merged := Merge(prior, entries, true)

	require.Len(t, merged, 3)
	assert.Same(t, prior[0], merged[0])
	assert.Same(t, o4, merged[1])
	assert.Same(t, o2b, merged[2])
}

func TestMergeInsertAtFront(t *testing.T) {
	o1 := echoOut("one", "1")
	oNew := echoOut("new", "N")
	prior := []*schema.Record{o1}
	entries := []Entry{
		{Prior: nil, New: oNew, Changed: true},
		{Prior: o1, New: o1, Changed: false},
	}

	merged := Merge(prior, entries, false)

	require.Len(t, merged, 2)
	assert.Same(t, oNew, merged[0])
	assert.Same(t, o1, merged[1])
}

func TestMergeConsecutiveInserts(t *testing.T) {
	o1 := echoOut("one", "1")
	oA := echoOut("a", "A")
	oB := echoOut("b", "B")
	prior := []*schema.Record{o1}
	entries := []Entry{
		{Prior: o1, New: o1, Changed: false},
		{Prior: nil, New: oA, Changed: true},
		{Prior: nil, New: oB, Changed: true},
	}

	merged := Merge(prior, entries, false)

	require.Len(t, merged, 3)
	assert.Same(t, o1, merged[0])
	assert.Same(t, oA, merged[1])
	assert.Same(t, oB, merged[2])
}

func TestMergeInsertsBeforeRemainingTail(t *testing.T) {
	p0 := echoOut("zero", "0")
	p1 := echoOut("one", "1")
	p2 := echoOut("two", "2")
	oA := echoOut("a", "A")
	oB := echoOut("b", "B")
	prior := []*schema.Record{p0, p1, p2}
	entries := []Entry{
		{Prior: p0, New: p0, Changed: false},
		{Prior: nil, New: oA, Changed: true},
		{Prior: nil, New: oB, Changed: true},
		{Prior: p1, New: p1, Changed: false},
		{Prior: p2, New: p2, Changed: false},
	}

	merged := Merge(prior, entries, false)

	// Both inserts land between p0 and p1, in entry order; the rest of
	// the prior tail stays contiguous behind them.
	require.Len(t, merged, 5)
	assert.Same(t, p0, merged[0])
	assert.Same(t, oA, merged[1])
	assert.Same(t, oB, merged[2])
	assert.Same(t, p1, merged[3])
	assert.Same(t, p2, merged[4])
}

func TestMergeFreshPrior(t *testing.T) {
	oA := echoOut("a", "A")
	oB := echoOut("b", "B")
	oC := echoOut("c", "C")
	entries := []Entry{
		{Prior: nil, New: oA, Changed: true},
		{Prior: nil, New: oB, Changed: true},
		{Prior: nil, New: oC, Changed: true},
	}

	// First training run: no prior output at all, every case inserts
	// at the front and the result comes out in case order.
	merged := Merge(nil, entries, false)

	require.Len(t, merged, 3)
	assert.Same(t, oA, merged[0])
	assert.Same(t, oB, merged[1])
	assert.Same(t, oC, merged[2])
}

func TestMergeNoEntries(t *testing.T) {
	o1 := echoOut("one", "1")
	prior := []*schema.Record{o1}

	// A run that matched nothing keeps the prior list verbatim and
	// purge drops everything.
	assert.Equal(t, prior, Merge(prior, nil, false))
	assert.Empty(t, Merge(prior, nil, true))
}

func TestMergeLostOutput(t *testing.T) {
	o1 := echoOut("one", "1")
	prior := []*schema.Record{o1}
	entries := []Entry{{Prior: o1, New: nil, Changed: true}}

	// Without purge the stale record stays in place; purge drops it.
	assert.Equal(t, prior, Merge(prior, entries, false))
	assert.Empty(t, Merge(prior, entries, true))
}
