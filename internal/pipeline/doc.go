// Package pipeline implements the linear, replayable image processing pipeline.
//
// A Pipeline is an ordered list of named operations, each bound to a parameter
// bag. Executing a pipeline threads an image through every operation in order
// and, optionally, records a snapshot of the image state before the first
// operation and after each one.
//
// # Operations
//
// Any transform that satisfies the Operation interface can be placed in a
// pipeline. Transforms must treat their input as read-only and return a new
// image; the pipeline copies the caller's image once on entry but does not
// protect one step's input from a misbehaving transform.
//
// # Snapshots
//
// For a pipeline of N operations, Execute with snapshots enabled produces
// exactly N+1 snapshots:
//   - index 0: the input image (a copy)
//   - index i (1..N): the output of operation i-1
//
// The snapshot map is reset at the start of every run that records snapshots.
// A run without snapshots leaves any previous snapshots in place.
//
// # Serialization
//
// Save returns a plain Config ({name, operations: [{name, params}]}) that can be
// written as JSON, YAML or TOML. Transforms are not serialized: Load resolves
// each operation name against a caller-supplied Registry and silently skips
// names the registry does not know. The LoadReport lists what was skipped.
//
// # Thread Safety
//
// A Pipeline is not safe for concurrent use. The snapshot map is shared state,
// so run at most one Execute per instance at a time. Separate Pipeline
// instances can run concurrently.
package pipeline
