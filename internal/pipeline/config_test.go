package pipeline

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func identity() Operation {
	return OperationFunc(func(img image.Image, params Params) (image.Image, error) {
		return img, nil
	})
}

func samplePipeline() *Pipeline {
	return New("Sample").
		AddOperation("contrast", identity(), Params{"contrast": 1.2}).
		AddOperation("saturation", identity(), Params{"saturation": 0.9}).
		AddOperation("vignette", identity(), Params{"strength": 0.3})
}

func sampleRegistry() Registry {
	return Registry{
		"contrast":   identity(),
		"saturation": identity(),
		"vignette":   identity(),
	}
}

func TestSave(t *testing.T) {
	cfg := samplePipeline().Save()

	if cfg.Name != "Sample" {
		t.Errorf("Name: got %s, want Sample", cfg.Name)
	}
	if len(cfg.Operations) != 3 {
		t.Fatalf("Operations: got %d, want 3", len(cfg.Operations))
	}
	if cfg.Operations[0].Params["contrast"] != 1.2 {
		t.Errorf("params: got %v", cfg.Operations[0].Params)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	orig := samplePipeline()

	loaded := New("")
	report := loaded.Load(orig.Save(), sampleRegistry())

	if loaded.Name() != "Sample" {
		t.Errorf("Name: got %s, want Sample", loaded.Name())
	}
	if report.Loaded() != 3 || len(report.Skipped()) != 0 {
		t.Errorf("report: loaded %d skipped %v", report.Loaded(), report.Skipped())
	}
	if !reflect.DeepEqual(loaded.Operations(), orig.Operations()) {
		t.Errorf("operations: got %v, want %v", loaded.Operations(), orig.Operations())
	}
}

func TestLoad_MissingRegistryEntry(t *testing.T) {
	reg := sampleRegistry()
	delete(reg, "saturation")

	loaded := New("")
	report := loaded.Load(samplePipeline().Save(), reg)

	ops := loaded.Operations()
	if len(ops) != 2 {
		t.Fatalf("Len: got %d, want 2", len(ops))
	}
	if ops[0].Name != "contrast" || ops[1].Name != "vignette" {
		t.Errorf("order: got %s,%s, want contrast,vignette", ops[0].Name, ops[1].Name)
	}
	if got := report.Skipped(); !reflect.DeepEqual(got, []string{"saturation"}) {
		t.Errorf("Skipped: got %v, want [saturation]", got)
	}
	if report.Entries[1].Result != Skipped {
		t.Errorf("entry 1: got %v, want skipped", report.Entries[1].Result)
	}
}

func TestLoad_ReplacesExisting(t *testing.T) {
	p := New("old").AddOperation("x", identity(), nil)
	p.Load(Config{Operations: []OperationInfo{{Name: "vignette"}}}, sampleRegistry())

	if p.Name() != DefaultName {
		t.Errorf("Name: got %s, want %s", p.Name(), DefaultName)
	}
	if p.Len() != 1 || p.Operations()[0].Name != "vignette" {
		t.Errorf("operations: got %v", p.Operations())
	}
}

func TestConfigCodecs_RoundTrip(t *testing.T) {
	formats := []Format{FormatJSON, FormatYAML, FormatTOML}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeConfig(&buf, samplePipeline().Save(), format); err != nil {
				t.Fatalf("EncodeConfig failed: %v", err)
			}

			cfg, err := DecodeConfig(&buf, format)
			if err != nil {
				t.Fatalf("DecodeConfig failed: %v", err)
			}

			p, report := FromConfig(cfg, sampleRegistry())
			if report.Loaded() != 3 {
				t.Fatalf("Loaded: got %d, want 3", report.Loaded())
			}

			ops := p.Operations()
			got, err := ops[0].Params.Float("contrast", 0)
			if err != nil {
				t.Fatalf("Float failed: %v", err)
			}
			if got != 1.2 {
				t.Errorf("contrast: got %v, want 1.2", got)
			}
			if ops[2].Name != "vignette" {
				t.Errorf("ops[2]: got %s, want vignette", ops[2].Name)
			}
		})
	}
}

func TestDecodeConfig_JSONShape(t *testing.T) {
	doc := `{"name": "Shared", "operations": [
		{"name": "contrast", "params": {"contrast": 1.1}},
		{"name": "unknown_filter", "params": {}},
		{"name": "vignette", "params": {"strength": 0.5}}
	]}`

	cfg, err := DecodeConfig(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	p, report := FromConfig(cfg, sampleRegistry())
	if p.Name() != "Shared" {
		t.Errorf("Name: got %s, want Shared", p.Name())
	}
	if p.Len() != 2 {
		t.Errorf("Len: got %d, want 2", p.Len())
	}
	if !reflect.DeepEqual(report.Skipped(), []string{"unknown_filter"}) {
		t.Errorf("Skipped: got %v", report.Skipped())
	}
}

func TestDecodeConfig_UnknownFormat(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader(""), Format("xml"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
	if err := EncodeConfig(&bytes.Buffer{}, Config{}, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"p.json", FormatJSON, false},
		{"p.YAML", FormatYAML, false},
		{"p.yml", FormatYAML, false},
		{"dir/p.toml", FormatTOML, false},
		{"p.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("format: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfigFile_WriteRead(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"p.json", "p.yaml", "p.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteConfigFile(path, samplePipeline().Save()); err != nil {
				t.Fatalf("WriteConfigFile failed: %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("file not written: %v", err)
			}

			cfg, err := ReadConfigFile(path)
			if err != nil {
				t.Fatalf("ReadConfigFile failed: %v", err)
			}
			if cfg.Name != "Sample" || len(cfg.Operations) != 3 {
				t.Errorf("config: got %+v", cfg)
			}
		})
	}
}

func TestReadConfigFile_Missing(t *testing.T) {
	if _, err := ReadConfigFile(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("ReadConfigFile should fail for a missing file")
	}
}
