// Package server implements the MCP (Model Context Protocol) server for
// VisionFlow.
//
// The server exposes the processing pipeline, presets and styles as tools
// over a JSON-RPC 2.0 connection.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Analysis:
//   - image_analyze: Dimensions, brightness, channel statistics, sharpness,
//     dominant colors and EXIF
//
// Processing:
//   - image_process: Apply individual adjustments in a fixed order
//   - image_apply_style: Apply a named style at an intensity
//
// Pipelines:
//   - pipeline_run: Run a preset or a serialized pipeline, optionally
//     writing per-step snapshots
//   - pipeline_describe: Resolve and validate a pipeline without running it
//
// Catalogs:
//   - styles_list: Named styles and their parameters
//   - operations_list: Registered operations and their parameters
//
// Processing tools write to "output" when given and otherwise return the
// result as a base64 PNG.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server, up to
// Options.MaxInputBytes per file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.Options{Logger: log})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
