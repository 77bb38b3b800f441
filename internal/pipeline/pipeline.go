package pipeline

import (
	"errors"
	"fmt"
	"image"
	"io"
	"slices"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultName is used for pipelines created or loaded without a name.
const DefaultName = "Untitled Pipeline"

// ErrIndexOutOfRange is returned by InsertOperation when the index is outside
// the valid insertion range 0..Len().
var ErrIndexOutOfRange = errors.New("index out of range")

// Pipeline is an ordered, mutable sequence of named operations with a
// snapshot cache of the most recent recorded run.
type Pipeline struct {
	name      string
	steps     []step
	snapshots map[int]image.Image
	log       logrus.FieldLogger
}

// New creates an empty pipeline. An empty name is replaced by DefaultName.
func New(name string) *Pipeline {
	if name == "" {
		name = DefaultName
	}
	return &Pipeline{
		name:      name,
		snapshots: make(map[int]image.Image),
		log:       discardLogger(),
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// SetName renames the pipeline.
func (p *Pipeline) SetName(name string) {
	p.name = name
}

// SetLogger attaches a logger that receives one debug entry per executed step.
// Passing nil restores the silent default.
func (p *Pipeline) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = discardLogger()
	}
	p.log = l
}

// Len returns the number of operations.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// AddOperation appends an operation and returns the pipeline for chaining.
//
// No compatibility check between op and params is made here; mismatches
// surface when the pipeline executes (or from Validate).
func (p *Pipeline) AddOperation(name string, op Operation, params Params) *Pipeline {
	p.steps = append(p.steps, step{name: name, op: op, params: params.Clone()})
	return p
}

// InsertOperation inserts an operation before index. Valid indexes are
// 0..Len(); index == Len() appends. Any other index returns
// ErrIndexOutOfRange and leaves the pipeline unchanged.
func (p *Pipeline) InsertOperation(index int, name string, op Operation, params Params) error {
	if index < 0 || index > len(p.steps) {
		return fmt.Errorf("insert at %d (len %d): %w", index, len(p.steps), ErrIndexOutOfRange)
	}
	p.steps = append(p.steps, step{})
	copy(p.steps[index+1:], p.steps[index:])
	p.steps[index] = step{name: name, op: op, params: params.Clone()}
	return nil
}

// RemoveOperation removes the operation at index. An index outside
// 0..Len()-1 is ignored and reported as OutOfRange.
//
// Snapshots from an earlier run are kept and become stale; re-execute to
// refresh them.
func (p *Pipeline) RemoveOperation(index int) Result {
	if index < 0 || index >= len(p.steps) {
		return OutOfRange
	}
	p.steps = slices.Delete(p.steps, index, index+1)
	return Applied
}

// ClearOperations removes every operation and every snapshot.
func (p *Pipeline) ClearOperations() {
	p.steps = nil
	p.snapshots = make(map[int]image.Image)
}

// Execute runs every operation in order over a copy of img and returns the
// final image. The caller's image is never modified.
//
// With saveSnapshots, the snapshot map is reset and then filled with the
// input copy at index 0 and the output of operation i at index i+1. Without
// it, existing snapshots are left as they are.
//
// The first failing operation stops the run and its error is returned as an
// *OperationError. Snapshots of the steps that completed before it remain
// available; none is stored for the failing step.
func (p *Pipeline) Execute(img image.Image, saveSnapshots bool) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("execute %s: %w", p.name, ErrNilImage)
	}
	runID := uuid.New()
	log := p.log.WithFields(logrus.Fields{
		"pipeline": p.name,
		"run_id":   runID.String(),
	})

	var current image.Image = imaging.Clone(img)

	if saveSnapshots {
		p.snapshots = make(map[int]image.Image, len(p.steps)+1)
		p.snapshots[0] = imaging.Clone(current)
	}

	start := time.Now()
	for i, s := range p.steps {
		stepStart := time.Now()
		out, err := s.apply(i, current)
		if err != nil {
			log.WithError(err).WithField("step", i).Debug("pipeline step failed")
			return nil, err
		}
		current = out

		if saveSnapshots {
			p.snapshots[i+1] = imaging.Clone(current)
		}
		log.WithFields(logrus.Fields{
			"step":      i,
			"operation": s.name,
			"duration":  time.Since(stepStart),
		}).Debug("pipeline step complete")
	}

	log.WithFields(logrus.Fields{
		"operations": len(p.steps),
		"snapshots":  saveSnapshots,
		"duration":   time.Since(start),
	}).Debug("pipeline run complete")

	return current, nil
}

// ExecutePartial runs the operations with index < upToStep over a copy of
// img. upToStep <= 0 returns the unmodified copy; upToStep >= Len() applies
// every operation. Snapshots are not touched.
func (p *Pipeline) ExecutePartial(img image.Image, upToStep int) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("execute %s: %w", p.name, ErrNilImage)
	}
	var current image.Image = imaging.Clone(img)
	for i, s := range p.steps {
		if i >= upToStep {
			break
		}
		out, err := s.apply(i, current)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

// Snapshot returns a copy of the image recorded at step, if any.
func (p *Pipeline) Snapshot(step int) (image.Image, bool) {
	img, ok := p.snapshots[step]
	if !ok {
		return nil, false
	}
	return imaging.Clone(img), true
}

// SnapshotCount returns the number of recorded snapshots.
func (p *Pipeline) SnapshotCount() int {
	return len(p.snapshots)
}

// Operations returns the name and parameters of every step, in order.
func (p *Pipeline) Operations() []OperationInfo {
	out := make([]OperationInfo, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.info()
	}
	return out
}

// Validate checks each step's parameters against operations that implement
// Validator. Steps whose operation has no validator are accepted.
func (p *Pipeline) Validate() error {
	for i, s := range p.steps {
		v, ok := s.op.(Validator)
		if !ok {
			continue
		}
		if err := v.Validate(s.params); err != nil {
			return &OperationError{Index: i, Name: s.name, Err: err}
		}
	}
	return nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
