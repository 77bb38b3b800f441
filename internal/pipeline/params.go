package pipeline

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrParamType is returned when a parameter holds a value of the wrong type.
	ErrParamType = errors.New("invalid parameter type")

	// ErrUnknownParam is returned by validators when a parameter bag contains a
	// key the operation does not accept.
	ErrUnknownParam = errors.New("unknown parameter")
)

// Params is the parameter bag bound to an operation.
//
// Keys are matched by exact string. Values come from Go callers or from a
// decoded configuration file, so numeric values may arrive as any of the Go
// numeric kinds (JSON decodes to float64, YAML to int, TOML to int64). The
// typed accessors accept all of them.
type Params map[string]any

// Clone returns a deep copy of the bag: lists and nested maps are copied so
// the result shares no mutable state with p. A nil bag clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch n := v.(type) {
	case []any:
		out := make([]any, len(n))
		for i, x := range n {
			out[i] = cloneValue(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, x := range n {
			out[k] = cloneValue(x)
		}
		return out
	case Params:
		return n.Clone()
	case []float64:
		return append([]float64(nil), n...)
	case []int:
		return append([]int(nil), n...)
	case []string:
		return append([]string(nil), n...)
	case [][]float64:
		out := make([][]float64, len(n))
		for i, x := range n {
			out[i] = append([]float64(nil), x...)
		}
		return out
	case [][]any:
		out := make([][]any, len(n))
		for i, x := range n {
			out[i] = cloneValue(x).([]any)
		}
		return out
	case [][2]float64:
		return append([][2]float64(nil), n...)
	case [][3]float64:
		return append([][3]float64(nil), n...)
	}
	return v
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Float returns the numeric parameter key, or def if it is absent.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrParamType, key, v)
	}
	return f, nil
}

// Int returns the integer parameter key, or def if it is absent. Whole
// floating point values are accepted since JSON carries no integer type.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrParamType, key, v)
	}
	return int(f), nil
}

// String returns the string parameter key, or def if it is absent.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrParamType, key, v)
	}
	return s, nil
}

// Bool returns the boolean parameter key, or def if it is absent.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", ErrParamType, key, v)
	}
	return b, nil
}

// Floats returns a list of numbers, or def if the key is absent.
func (p Params) Floats(key string, def []float64) ([]float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	out, ok := toFloats(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of numbers, got %T", ErrParamType, key, v)
	}
	return out, nil
}

// Points returns a list of (x, y) pairs such as tone curve control points.
// An absent key yields nil.
func (p Params) Points(key string) ([][2]float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	if pts, ok := v.([][2]float64); ok {
		return pts, nil
	}
	items, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of [x, y] pairs, got %T", ErrParamType, key, v)
	}
	out := make([][2]float64, 0, len(items))
	for i, item := range items {
		pair, ok := toFloats(item)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: %s[%d] must be an [x, y] pair", ErrParamType, key, i)
		}
		out = append(out, [2]float64{pair[0], pair[1]})
	}
	return out, nil
}

// Triples returns a list of 3-element entries such as RGB lookup table rows.
// An absent key yields nil.
func (p Params) Triples(key string) ([][3]float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	if rows, ok := v.([][3]float64); ok {
		return rows, nil
	}
	items, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of [r, g, b] triples, got %T", ErrParamType, key, v)
	}
	out := make([][3]float64, 0, len(items))
	for i, item := range items {
		row, ok := toFloats(item)
		if !ok || len(row) != 3 {
			return nil, fmt.Errorf("%w: %s[%d] must be an [r, g, b] triple", ErrParamType, key, i)
		}
		out = append(out, [3]float64{row[0], row[1], row[2]})
	}
	return out, nil
}

// CheckKeys returns ErrUnknownParam if p holds a key outside allowed.
func (p Params) CheckKeys(allowed ...string) error {
	for _, k := range p.Keys() {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownParam, k)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toFloats(v any) ([]float64, bool) {
	switch n := v.(type) {
	case []float64:
		return n, true
	case [2]float64:
		return n[:], true
	case [3]float64:
		return n[:], true
	case []int:
		out := make([]float64, len(n))
		for i, x := range n {
			out[i] = float64(x)
		}
		return out, true
	}
	items, ok := toList(v)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func toList(v any) ([]any, bool) {
	switch n := v.(type) {
	case []any:
		return n, true
	case [][]float64:
		out := make([]any, len(n))
		for i, x := range n {
			out[i] = x
		}
		return out, true
	case [][]any:
		out := make([]any, len(n))
		for i, x := range n {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}
