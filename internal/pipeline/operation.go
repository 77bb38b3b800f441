package pipeline

import (
	"errors"
	"fmt"
	"image"
	"sort"
)

// ErrNilImage is returned when an operation produces no image.
var ErrNilImage = errors.New("operation returned nil image")

// Operation is a named, parameterized image transform.
//
// Apply must not modify img. It returns a new image or an error; it is called
// once per pipeline step with the parameters bound to that step.
type Operation interface {
	Apply(img image.Image, params Params) (image.Image, error)
}

// OperationFunc adapts an ordinary function to the Operation interface.
type OperationFunc func(img image.Image, params Params) (image.Image, error)

// Apply calls f(img, params).
func (f OperationFunc) Apply(img image.Image, params Params) (image.Image, error) {
	return f(img, params)
}

// Validator is implemented by operations that can check a parameter bag
// without running the transform.
type Validator interface {
	Validate(params Params) error
}

// Registry maps operation names to transforms. It is supplied by the caller
// when loading a serialized pipeline; the pipeline never hardcodes the set of
// available transforms.
type Registry map[string]Operation

// Lookup returns the operation registered under name.
func (r Registry) Lookup(name string) (Operation, bool) {
	op, ok := r[name]
	return op, ok && op != nil
}

// Names returns the registered operation names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Merge copies every entry of other into r, replacing existing names.
func (r Registry) Merge(other Registry) Registry {
	for k, v := range other {
		r[k] = v
	}
	return r
}

// OperationInfo is the serializable projection of a pipeline step. It carries
// no transform reference.
type OperationInfo struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Params Params `json:"params" yaml:"params" toml:"params"`
}

// OperationError reports a transform failure during execution.
type OperationError struct {
	Index int    // 0-based position of the failing step
	Name  string // step name
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s) failed: %v", e.Index, e.Name, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Result reports the outcome of a lenient mutation that never fails loudly.
type Result int

const (
	// Applied means the mutation took effect.
	Applied Result = iota
	// Skipped means the input was valid but nothing could be done with it,
	// e.g. an operation name missing from the registry.
	Skipped
	// OutOfRange means an index was outside the valid range and was ignored.
	OutOfRange
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case OutOfRange:
		return "out_of_range"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

type step struct {
	name   string
	op     Operation
	params Params
}

func (s step) info() OperationInfo {
	return OperationInfo{Name: s.name, Params: s.params.Clone()}
}

func (s step) apply(index int, img image.Image) (image.Image, error) {
	if s.op == nil {
		return nil, &OperationError{Index: index, Name: s.name, Err: errors.New("no transform bound")}
	}
	out, err := s.op.Apply(img, s.params.Clone())
	if err != nil {
		return nil, &OperationError{Index: index, Name: s.name, Err: err}
	}
	if out == nil {
		return nil, &OperationError{Index: index, Name: s.name, Err: ErrNilImage}
	}
	return out, nil
}
