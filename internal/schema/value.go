package schema

import "bytes"

// valueEqual compares two generic document values structurally.
// The domain is the loader's value set: nil, string, int, bool,
// float64, []byte, []any, map[string]any and *Record. Records compare
// by schema and value tuple, never by identity or source location.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, present := bv[k]
			if !present || !valueEqual(v, bvv) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// ValueEqual is the exported form of the structural comparison, used by
// the reconciliation engine to detect changed output lists.
func ValueEqual(a, b any) bool { return valueEqual(a, b) }
