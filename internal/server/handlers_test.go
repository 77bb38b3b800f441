package server

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/visionflow/internal/imaging"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

// callTool sends a tools/call request through handleRequest.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("Failed to unmarshal content: %v", err)
	}
}

func TestHandleToolsCall_ImageAnalyze(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var got imaging.Analysis
	decodeContent(t, callTool(t, s, "image_analyze", map[string]interface{}{"path": imgPath}), &got)

	if got.Dimensions.Width != 100 || got.Dimensions.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", got.Dimensions.Width, got.Dimensions.Height)
	}
}

func TestHandleToolsCall_ImageProcess_Output(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 40, 30, color.RGBA{100, 120, 140, 255})
	out := filepath.Join(t.TempDir(), "out.png")

	var got ProcessResult
	decodeContent(t, callTool(t, s, "image_process", map[string]interface{}{
		"path":     imgPath,
		"output":   out,
		"exposure": 1,
		"vignette": 0.3,
	}), &got)

	if got.Output != out {
		t.Errorf("output: got %q, want %q", got.Output, out)
	}
	if got.Image != nil {
		t.Error("image should be omitted when output is set")
	}
	if got.Width != 40 || got.Height != 30 {
		t.Errorf("size: got %dx%d, want 40x30", got.Width, got.Height)
	}
	if len(got.Operations) != 2 || got.Operations[0].Name != "exposure" || got.Operations[1].Name != "vignette" {
		t.Errorf("operations: got %v", got.Operations)
	}
	if len(got.History) == 0 {
		t.Error("history should record the pipeline")
	}

	saved, err := imaging.Open(out, 0)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	// Exposure +1 doubles the center pixel; the vignette leaves the center alone
	if c := saved.NRGBAAt(20, 15); c.R < 195 || c.G < 235 {
		t.Errorf("center: got %v, want ~{200 240 255}", c)
	}
}

func TestHandleToolsCall_ImageProcess_Base64(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 20, 10, color.RGBA{50, 50, 50, 255})

	var got ProcessResult
	decodeContent(t, callTool(t, s, "image_process", map[string]interface{}{
		"path":     imgPath,
		"contrast": 1.2,
	}), &got)

	if got.Image == nil {
		t.Fatal("image should be returned when no output is given")
	}
	if got.Image.MimeType != "image/png" || got.Image.ImageBase64 == "" {
		t.Errorf("image: got mime %q, %d bytes", got.Image.MimeType, len(got.Image.ImageBase64))
	}
	if got.Image.Width != 20 || got.Image.Height != 10 {
		t.Errorf("image size: got %dx%d, want 20x10", got.Image.Width, got.Image.Height)
	}
	if got.Pipeline != "Custom Processing" {
		t.Errorf("pipeline: got %q", got.Pipeline)
	}
}

func TestHandleToolsCall_ImageApplyStyle(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 30, 30, color.RGBA{128, 128, 128, 255})

	var got ProcessResult
	decodeContent(t, callTool(t, s, "image_apply_style", map[string]interface{}{
		"path":      imgPath,
		"style":     "vintage",
		"intensity": 0.5,
	}), &got)

	if got.Pipeline != "Style: vintage" {
		t.Errorf("pipeline: got %q", got.Pipeline)
	}
	if len(got.Operations) != 1 || got.Operations[0].Params["intensity"] != 0.5 {
		t.Errorf("operations: got %v", got.Operations)
	}
}

func TestHandleToolsCall_ImageApplyStyle_Unknown(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{128, 128, 128, 255})

	resp := callTool(t, s, "image_apply_style", map[string]interface{}{
		"path":  imgPath,
		"style": "nonexistent",
	})

	if resp.Error == nil {
		t.Fatal("Expected error for unknown style")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "nonexistent") {
		t.Errorf("Error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_PipelineRun_Preset(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 32, 24, color.RGBA{120, 100, 90, 255})
	out := filepath.Join(t.TempDir(), "cinematic.jpg")

	var got ProcessResult
	decodeContent(t, callTool(t, s, "pipeline_run", map[string]interface{}{
		"path":   imgPath,
		"preset": "cinematic",
		"output": out,
	}), &got)

	if got.Pipeline != "Cinematic Look" {
		t.Errorf("pipeline: got %q", got.Pipeline)
	}
	if len(got.Operations) != 5 {
		t.Errorf("operations: got %d, want 5", len(got.Operations))
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestHandleToolsCall_PipelineRun_InlineConfig(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 40, 20, color.RGBA{100, 100, 100, 255})
	snapDir := t.TempDir()

	var got ProcessResult
	decodeContent(t, callTool(t, s, "pipeline_run", map[string]interface{}{
		"path": imgPath,
		"config": map[string]interface{}{
			"name": "Inline",
			"operations": []map[string]interface{}{
				{"name": "resize", "params": map[string]interface{}{"width": 20}},
				{"name": "posterize", "params": map[string]interface{}{}},
				{"name": "exposure", "params": map[string]interface{}{"exposure": 1}},
			},
		},
		"snapshot_dir": snapDir,
	}), &got)

	if got.Width != 20 || got.Height != 10 {
		t.Errorf("size: got %dx%d, want 20x10", got.Width, got.Height)
	}
	if len(got.Skipped) != 1 || got.Skipped[0] != "posterize" {
		t.Errorf("skipped: got %v, want [posterize]", got.Skipped)
	}
	if len(got.Operations) != 2 {
		t.Errorf("operations: got %d, want 2", len(got.Operations))
	}

	// Input plus one snapshot per operation
	if len(got.Snapshots) != 3 {
		t.Fatalf("snapshots: got %d, want 3", len(got.Snapshots))
	}
	for _, p := range got.Snapshots {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("snapshot %s not written: %v", p, err)
		}
	}
	if filepath.Base(got.Snapshots[0]) != "step_00.png" {
		t.Errorf("first snapshot: got %s", filepath.Base(got.Snapshots[0]))
	}
}

func TestHandleToolsCall_PipelineRun_ConfigPath(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 16, 16, color.RGBA{60, 60, 60, 255})

	cfgPath := filepath.Join(t.TempDir(), "pipeline.yaml")
	yaml := "name: From File\noperations:\n  - name: saturation\n    params:\n      saturation: 1.1\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var got ProcessResult
	decodeContent(t, callTool(t, s, "pipeline_run", map[string]interface{}{
		"path":        imgPath,
		"config_path": cfgPath,
	}), &got)

	if got.Pipeline != "From File" {
		t.Errorf("pipeline: got %q", got.Pipeline)
	}
	if got.Image == nil {
		t.Error("image should be returned when no output is given")
	}
}

func TestHandleToolsCall_PipelineRun_SourceCount(t *testing.T) {
	s := New(Options{})
	imgPath := createTestImageFile(t, 8, 8, color.RGBA{0, 0, 0, 255})

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"none", map[string]interface{}{"path": imgPath}},
		{"two", map[string]interface{}{"path": imgPath, "preset": "portrait", "config_path": "x.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "pipeline_run", tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
			if resp.Error.Data != errPipelineSource.Error() {
				t.Errorf("Error data: got %v", resp.Error.Data)
			}
		})
	}
}

func TestHandleToolsCall_PipelineDescribe(t *testing.T) {
	s := New(Options{})

	var preset PipelineDescription
	decodeContent(t, callTool(t, s, "pipeline_describe", map[string]interface{}{"preset": "landscape"}), &preset)
	if !preset.Valid {
		t.Errorf("landscape should be valid: %s", preset.Error)
	}
	if preset.Config.Name != "Landscape Enhancement" || len(preset.Config.Operations) != 4 {
		t.Errorf("config: got %q with %d operations", preset.Config.Name, len(preset.Config.Operations))
	}

	var bad PipelineDescription
	decodeContent(t, callTool(t, s, "pipeline_describe", map[string]interface{}{
		"config": map[string]interface{}{
			"name": "Bad",
			"operations": []map[string]interface{}{
				{"name": "vignette", "params": map[string]interface{}{"radius": 2}},
			},
		},
	}), &bad)
	if bad.Valid {
		t.Error("unknown parameter should make the pipeline invalid")
	}
	if !strings.Contains(bad.Error, "radius") {
		t.Errorf("error: got %q", bad.Error)
	}
}

func TestHandleToolsCall_StylesList(t *testing.T) {
	s := New(Options{})

	var got []StyleInfo
	decodeContent(t, callTool(t, s, "styles_list", nil), &got)

	want := []string{"cinematic", "vintage", "dramatic", "soft", "high_key", "low_key"}
	if len(got) != len(want) {
		t.Fatalf("style count: got %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("style %d: got %s, want %s", i, got[i].Name, name)
		}
		if len(got[i].Params) == 0 {
			t.Errorf("style %s has no params", name)
		}
	}
}

func TestHandleToolsCall_OperationsList(t *testing.T) {
	s := New(Options{})

	var got []struct {
		Name string `json:"name"`
	}
	decodeContent(t, callTool(t, s, "operations_list", nil), &got)

	if len(got) != 27 {
		t.Errorf("operation count: got %d, want 27", len(got))
	}
	if got[len(got)-1].Name != "apply_style" {
		t.Errorf("last operation: got %s, want apply_style", got[len(got)-1].Name)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(Options{})

	resp := callTool(t, s, "image_analyze", map[string]interface{}{"path": "/nonexistent/image.png"})

	if resp.Error == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(Options{})

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`[1, 2]`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Error: got %v, want code -32602", resp.Error)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(Options{})

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(Options{})

	_, err := s.executeTool("image_analyze", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}

func TestResolve(t *testing.T) {
	s := New(Options{})

	p, _, err := s.resolve(pipelineSourceArgs{Preset: "portrait"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Name() != "Portrait Retouch" {
		t.Errorf("name: got %q", p.Name())
	}

	if _, _, err := s.resolve(pipelineSourceArgs{Preset: "sepia"}); err == nil {
		t.Error("unknown preset should fail")
	}
	if _, _, err := s.resolve(pipelineSourceArgs{}); !errors.Is(err, errPipelineSource) {
		t.Errorf("empty source: got %v, want errPipelineSource", err)
	}
}
