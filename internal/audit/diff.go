package audit

import "reflect"

// systemFields are bookkeeping columns maintained by the write path itself.
// A mutation touching only these is not a real change and produces no entry.
var systemFields = map[string]struct{}{
	"created":             {},
	"changed":             {},
	"timestamp":           {},
	"lastModifiedBy":      {},
	"lastModifiedByEmail": {},
}

// Changed reports whether any non-system field differs between the two
// snapshots. Comparison is deep structural equality: map keys are
// order-insensitive, array elements are order-sensitive. The check
// short-circuits on the first difference, and two empty or nil snapshots
// never count as changed.
func Changed(before, after map[string]any) bool {
	for key, prev := range before {
		if _, system := systemFields[key]; system {
			continue
		}
		next, ok := after[key]
		if !ok || !deepEqual(prev, next) {
			return true
		}
	}
	for key := range after {
		if _, system := systemFields[key]; system {
			continue
		}
		if _, ok := before[key]; !ok {
			return true
		}
	}
	return false
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, inner := range av {
			other, ok := bv[k]
			if !ok || !deepEqual(inner, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		if reflect.TypeOf(a) == reflect.TypeOf(b) {
			return reflect.DeepEqual(a, b)
		}
		return normalizedEqual(a, b)
	}
}

// normalizedEqual absorbs the numeric widening JSON round-trips introduce,
// so int64(3) from a freshly built snapshot equals float64(3) decoded from
// a stored one.
func normalizedEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
