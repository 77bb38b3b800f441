package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/visionflow/internal/composite"
	"github.com/ironsheep/visionflow/internal/filters"
	"github.com/ironsheep/visionflow/internal/imaging"
	"github.com/ironsheep/visionflow/internal/pipeline"
	"github.com/ironsheep/visionflow/internal/presets"
	"github.com/ironsheep/visionflow/internal/styles"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_analyze", "pipeline_run").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Debug("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Builds and runs the pipeline, or reads the catalogs
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_analyze":
		return s.handleImageAnalyze(args)
	case "image_process":
		return s.handleImageProcess(args)
	case "image_apply_style":
		return s.handleImageApplyStyle(args)

	case "pipeline_run":
		return s.handlePipelineRun(args)
	case "pipeline_describe":
		return s.handlePipelineDescribe(args)

	case "styles_list":
		return s.handleStylesList()
	case "operations_list":
		return s.handleOperationsList()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// ProcessResult describes the outcome of a tool that produced an image.
type ProcessResult struct {
	Pipeline   string                   `json:"pipeline"`
	Operations []pipeline.OperationInfo `json:"operations"`
	Skipped    []string                 `json:"skipped,omitempty"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`

	// Output is set when the result was written to disk, Image otherwise.
	Output string                `json:"output,omitempty"`
	Image  *imaging.EncodedImage `json:"image,omitempty"`

	Snapshots []string                 `json:"snapshots,omitempty"`
	History   []composite.HistoryEntry `json:"history,omitempty"`
}

// === Analysis Handlers ===

type imageAnalyzeArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageAnalyze(args json.RawMessage) (interface{}, error) {
	var a imageAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.AnalyzeFile(s.cache, a.Path)
}

// === Processing Handlers ===

type imageProcessArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	presets.Adjustments
}

func (s *Server) handleImageProcess(args json.RawMessage) (interface{}, error) {
	var a imageProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := a.Adjustments.Pipeline(s.styles)
	if err != nil {
		return nil, err
	}
	return s.applyToComposite(a.Path, a.Output, p)
}

type imageApplyStyleArgs struct {
	Path      string   `json:"path"`
	Output    string   `json:"output"`
	Style     string   `json:"style"`
	Intensity *float64 `json:"intensity"`
}

func (s *Server) handleImageApplyStyle(args json.RawMessage) (interface{}, error) {
	var a imageApplyStyleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	intensity := 1.0
	if a.Intensity != nil {
		intensity = *a.Intensity
	}

	p := pipeline.New("Style: " + a.Style)
	p.AddOperation(styles.OperationName, s.styles.Operation(), pipeline.Params{"style": a.Style, "intensity": intensity})
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.applyToComposite(a.Path, a.Output, p)
}

// applyToComposite runs p as a layer over the image at path and writes or
// encodes the flattened result. p must preserve the image size.
func (s *Server) applyToComposite(path, output string, p *pipeline.Pipeline) (*ProcessResult, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	vf, err := composite.FromImage(img)
	if err != nil {
		return nil, err
	}

	p.SetLogger(s.log)
	if _, err := vf.ApplyPipeline(p, false); err != nil {
		return nil, err
	}

	result := &ProcessResult{
		Pipeline:   p.Name(),
		Operations: p.Operations(),
		Width:      vf.Metadata().Width,
		Height:     vf.Metadata().Height,
	}
	if output != "" {
		if err := vf.Save(output, true, composite.WithJPEGQuality(s.jpegQuality)); err != nil {
			return nil, err
		}
		result.Output = output
	} else {
		enc, err := imaging.EncodePNGBase64(vf.Flatten())
		if err != nil {
			return nil, err
		}
		result.Image = enc
	}
	result.History = vf.History()
	return result, nil
}

// === Pipeline Handlers ===

type pipelineSourceArgs struct {
	Preset     string           `json:"preset"`
	Config     *pipeline.Config `json:"config"`
	ConfigPath string           `json:"config_path"`
}

var errPipelineSource = errors.New("exactly one of preset, config or config_path is required")

// resolve builds the selected pipeline against the server registry.
func (s *Server) resolve(a pipelineSourceArgs) (*pipeline.Pipeline, pipeline.LoadReport, error) {
	n := 0
	for _, set := range []bool{a.Preset != "", a.Config != nil, a.ConfigPath != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, pipeline.LoadReport{}, errPipelineSource
	}

	switch {
	case a.Preset != "":
		p, err := presets.New(a.Preset)
		return p, pipeline.LoadReport{}, err
	case a.Config != nil:
		p, report := pipeline.FromConfig(*a.Config, s.registry)
		return p, report, nil
	default:
		cfg, err := pipeline.ReadConfigFile(a.ConfigPath)
		if err != nil {
			return nil, pipeline.LoadReport{}, err
		}
		p, report := pipeline.FromConfig(cfg, s.registry)
		return p, report, nil
	}
}

type pipelineRunArgs struct {
	pipelineSourceArgs
	Path        string `json:"path"`
	Output      string `json:"output"`
	SnapshotDir string `json:"snapshot_dir"`
}

func (s *Server) handlePipelineRun(args json.RawMessage) (interface{}, error) {
	var a pipelineRunArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, report, err := s.resolve(a.pipelineSourceArgs)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	p.SetLogger(s.log)
	out, err := p.Execute(img, a.SnapshotDir != "")
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		Pipeline:   p.Name(),
		Operations: p.Operations(),
		Skipped:    report.Skipped(),
		Width:      out.Bounds().Dx(),
		Height:     out.Bounds().Dy(),
	}

	if a.SnapshotDir != "" {
		if err := os.MkdirAll(a.SnapshotDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		for i := 0; i < p.SnapshotCount(); i++ {
			snap, _ := p.Snapshot(i)
			path := filepath.Join(a.SnapshotDir, fmt.Sprintf("step_%02d.png", i))
			if err := imaging.Save(snap, path, imaging.SaveOptions{}); err != nil {
				return nil, err
			}
			result.Snapshots = append(result.Snapshots, path)
		}
	}

	if a.Output != "" {
		if err := imaging.Save(out, a.Output, imaging.SaveOptions{JPEGQuality: s.jpegQuality}); err != nil {
			return nil, err
		}
		result.Output = a.Output
	} else {
		enc, err := imaging.EncodePNGBase64(out)
		if err != nil {
			return nil, err
		}
		result.Image = enc
	}
	return result, nil
}

// PipelineDescription is the result of pipeline_describe.
type PipelineDescription struct {
	Config  pipeline.Config `json:"config"`
	Skipped []string        `json:"skipped,omitempty"`
	Valid   bool            `json:"valid"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handlePipelineDescribe(args json.RawMessage) (interface{}, error) {
	var a pipelineSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, report, err := s.resolve(a)
	if err != nil {
		return nil, err
	}

	desc := &PipelineDescription{
		Config:  p.Save(),
		Skipped: report.Skipped(),
		Valid:   true,
	}
	if err := p.Validate(); err != nil {
		desc.Valid = false
		desc.Error = err.Error()
	}
	return desc, nil
}

// === Catalog Handlers ===

// StyleInfo is one entry of styles_list.
type StyleInfo struct {
	Name   string        `json:"name"`
	Params styles.Params `json:"params"`
}

func (s *Server) handleStylesList() (interface{}, error) {
	names := s.styles.Names()
	out := make([]StyleInfo, 0, len(names))
	for _, name := range names {
		params, _ := s.styles.Style(name)
		out = append(out, StyleInfo{Name: name, Params: params})
	}
	return out, nil
}

// styleOperation documents the apply_style registry entry.
var styleOperation = &filters.Operation{
	Name:        styles.OperationName,
	Description: "Apply a named style",
	Params: []filters.Param{
		{Name: "style", Description: "style name, see styles_list"},
		{Name: "intensity", Default: 1.0, Description: "0-1"},
	},
}

func (s *Server) handleOperationsList() (interface{}, error) {
	return append(filters.Operations(), styleOperation), nil
}
