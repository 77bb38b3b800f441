package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var outputProperty = map[string]interface{}{
	"type":        "string",
	"description": "Optional output path; the format follows the extension. When omitted the result is returned as base64-encoded PNG",
}

func number(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// pipelineSourceProperties select a pipeline: a preset name, an inline
// configuration or a configuration file.
var pipelineSourceProperties = map[string]interface{}{
	"preset": map[string]interface{}{
		"type":        "string",
		"enum":        []string{"portrait", "landscape", "cinematic"},
		"description": "Built-in pipeline preset",
	},
	"config": map[string]interface{}{
		"type":        "object",
		"description": `Inline pipeline: {"name": string, "operations": [{"name": string, "params": {...}}]}`,
	},
	"config_path": map[string]interface{}{
		"type":        "string",
		"description": "Path to a JSON, YAML or TOML pipeline file",
	},
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_analyze",
			Description: "Analyze an image: dimensions, format, file size, brightness and per-channel statistics, sharpness, dominant colors and EXIF tags.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_process",
			Description: "Apply one-shot adjustments to an image. Adjustments run in a fixed order: white balance, exposure, contrast, saturation, blur, sharpen, vignette, denoise, grain, clarity, style. Omitted or zero values are skipped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":            pathProperty,
					"output":          outputProperty,
					"temperature":     number("White balance temperature, -1 (cool) to 1 (warm)"),
					"tint":            number("White balance tint, -1 to 1"),
					"exposure":        number("Exposure in stops, -2 to 2"),
					"contrast":        number("Contrast factor, 1 = unchanged"),
					"saturation":      number("Saturation factor, 1 = unchanged"),
					"blur":            number("Gaussian blur radius"),
					"sharpen":         number("Sharpen strength, 0-3"),
					"vignette":        number("Vignette strength, 0-1"),
					"denoise":         number("Denoise strength, 0-3"),
					"grain":           number("Film grain intensity, 0-1"),
					"clarity":         number("Clarity amount, 0-2"),
					"style":           map[string]interface{}{"type": "string", "description": "Style name, see styles_list"},
					"style_intensity": number("Style intensity, 0-1. Default 1"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_apply_style",
			Description: "Apply a named visual style (cinematic, vintage, dramatic, soft, high_key, low_key or a configured custom style).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"output":    outputProperty,
					"style":     map[string]interface{}{"type": "string", "description": "Style name"},
					"intensity": number("0 leaves the image unchanged, 1 is the full style. Default 1"),
				},
				"required": []string{"path", "style"},
			},
		},
		{
			Name:        "pipeline_run",
			Description: "Run a pipeline over an image. Give exactly one of preset, config or config_path. Operations unknown to the registry are skipped and reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(pipelineSourceProperties, map[string]interface{}{
					"path":   pathProperty,
					"output": outputProperty,
					"snapshot_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory that receives step_NN.png for the input and every step",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "pipeline_describe",
			Description: "Resolve a pipeline (preset, inline config or config file) without running it. Returns its configuration, skipped operations and any parameter validation error.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pipelineSourceProperties,
			},
		},
		{
			Name:        "styles_list",
			Description: "List the available styles and their parameters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "operations_list",
			Description: "List the pipeline operations with their parameters and defaults.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
