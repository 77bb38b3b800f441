package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/visionflow/internal/composite"
	"github.com/ironsheep/visionflow/internal/config"
	"github.com/ironsheep/visionflow/internal/filters"
	"github.com/ironsheep/visionflow/internal/imaging"
	"github.com/ironsheep/visionflow/internal/logger"
	"github.com/ironsheep/visionflow/internal/pipeline"
	"github.com/ironsheep/visionflow/internal/presets"
	"github.com/ironsheep/visionflow/internal/server"
	"github.com/ironsheep/visionflow/internal/styles"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `visionflow - composable image processing pipelines

Usage: visionflow [--config file] <command> [arguments]

Commands:
  analyze <image>                       Print a technical analysis as JSON
  process <image> [adjustments]         Apply individual adjustments
  pipeline <image> <preset|config>      Run a preset or a pipeline file
  list-styles                           List named styles
  list-operations                       List pipeline operations
  serve                                 Run the MCP server on stdin/stdout
  version                               Print version information
  help                                  Print this help message

Presets: portrait, landscape, cinematic

Environment variables:
  VISIONFLOW_CONFIG          Configuration file (default: visionflow.toml)
  VISIONFLOW_LOG_LEVEL       debug, info, warn, error
  VISIONFLOW_LOG_FORMAT      text or json
  VISIONFLOW_JPEG_QUALITY    1-100
  VISIONFLOW_MAX_INPUT_SIZE  e.g. 50MB

Run "visionflow <command> -h" for command flags.
`

// app carries the resolved configuration shared by all commands.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	styles *styles.Creator
	out    io.Writer
}

func main() {
	global := flag.NewFlagSet("visionflow", flag.ExitOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", "", "configuration file")
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("visionflow %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "help", "--help", "-h":
		fmt.Print(usage)
		return
	}

	a, err := newApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "visionflow: %v\n", err)
		os.Exit(1)
	}

	if err := a.run(args[0], args[1:]); err != nil {
		a.log.WithField("command", args[0]).Error(err)
		os.Exit(1)
	}
}

func newApp(configPath string) (*app, error) {
	cfg := &config.Config{}
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Merge(fileCfg)
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	creator := styles.NewCreator()
	for name, params := range cfg.Styles {
		creator.Define(name, params)
		log.WithField("style", name).Debug("defined custom style")
	}

	return &app{cfg: cfg, log: log, styles: creator, out: os.Stdout}, nil
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "analyze":
		return a.analyze(args)
	case "process":
		return a.process(args)
	case "pipeline":
		return a.pipeline(args)
	case "list-styles":
		return a.listStyles()
	case "list-operations":
		return a.listOperations()
	case "serve":
		return a.serve()
	default:
		return fmt.Errorf("unknown command %q, see visionflow help", command)
	}
}

// parseInterspersed parses fs allowing flags before and after positional
// arguments, and returns the positional ones.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) analyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return errors.New("usage: visionflow analyze <image>")
	}

	cache := imaging.NewImageCache(a.cfg.Input.MaxSizeBytes())
	analysis, err := imaging.AnalyzeFile(cache, positional[0])
	if err != nil {
		return err
	}
	return a.printJSON(analysis)
}

func (a *app) process(args []string) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	var adj presets.Adjustments
	fs.Float64Var(&adj.Temperature, "temperature", 0, "white balance temperature, -1 to 1")
	fs.Float64Var(&adj.Tint, "tint", 0, "white balance tint, -1 to 1")
	fs.Float64Var(&adj.Exposure, "exposure", 0, "exposure in stops")
	fs.Float64Var(&adj.Contrast, "contrast", 0, "contrast factor, 1 is unchanged")
	fs.Float64Var(&adj.Saturation, "saturation", 0, "saturation factor, 1 is unchanged")
	fs.Float64Var(&adj.Blur, "blur", 0, "Gaussian blur radius")
	fs.Float64Var(&adj.Sharpen, "sharpen", 0, "sharpen strength")
	fs.Float64Var(&adj.Vignette, "vignette", 0, "vignette strength, 0 to 1")
	fs.Float64Var(&adj.Denoise, "denoise", 0, "denoise strength")
	fs.Float64Var(&adj.Grain, "grain", 0, "film grain intensity, 0 to 1")
	fs.Float64Var(&adj.Clarity, "clarity", 0, "clarity amount")
	fs.StringVar(&adj.Style, "style", "", "named style applied last")
	fs.Float64Var(&adj.StyleIntensity, "style-intensity", 0, "style intensity, 0 to 1 (default 1)")
	output := fs.String("o", "", "output file (default <input>_<suffix>)")
	savePipeline := fs.String("save-pipeline", "", "write the pipeline to a .json, .yaml or .toml file")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return errors.New("usage: visionflow process <image> [adjustments] [-o output]")
	}
	input := positional[0]

	p, err := adj.Pipeline(a.styles)
	if err != nil {
		return err
	}
	if p.Len() == 0 {
		return errors.New("no adjustments given")
	}
	p.SetLogger(a.log)

	if *savePipeline != "" {
		if err := pipeline.WriteConfigFile(*savePipeline, p.Save()); err != nil {
			return err
		}
		a.log.WithField("path", *savePipeline).Info("saved pipeline")
	}

	vf, err := composite.New(composite.Source{Path: input, MaxBytes: a.cfg.Input.MaxSizeBytes()})
	if err != nil {
		return err
	}
	if _, err := vf.ApplyPipeline(p, false); err != nil {
		return err
	}

	if *output == "" {
		*output = imaging.DerivedPath(input, a.cfg.Output.Suffix)
	}
	if err := vf.Save(*output, true, composite.WithJPEGQuality(a.cfg.Output.JPEGQuality)); err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"input":      input,
		"output":     *output,
		"operations": p.Len(),
	}).Info("processed image")
	return nil
}

func (a *app) pipeline(args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	output := fs.String("o", "", "output file (default <input>_<preset>)")
	snapshots := fs.String("snapshots", "", "directory for per-step snapshots")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return errors.New("usage: visionflow pipeline <image> <preset|config file> [-o output] [--snapshots dir]")
	}
	input, source := positional[0], positional[1]

	p, suffix, err := a.resolvePipeline(source)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.SetLogger(a.log)

	img, err := imaging.Open(input, a.cfg.Input.MaxSizeBytes())
	if err != nil {
		return err
	}
	out, err := p.Execute(img, *snapshots != "")
	if err != nil {
		return err
	}

	if *snapshots != "" {
		if err := os.MkdirAll(*snapshots, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		for i := 0; i < p.SnapshotCount(); i++ {
			snap, _ := p.Snapshot(i)
			path := filepath.Join(*snapshots, fmt.Sprintf("step_%02d.png", i))
			if err := imaging.Save(snap, path, imaging.SaveOptions{}); err != nil {
				return err
			}
		}
		a.log.WithFields(logrus.Fields{"dir": *snapshots, "count": p.SnapshotCount()}).Info("saved snapshots")
	}

	if *output == "" {
		*output = imaging.DerivedPath(input, suffix)
	}
	if err := imaging.Save(out, *output, imaging.SaveOptions{JPEGQuality: a.cfg.Output.JPEGQuality}); err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"pipeline": p.Name(),
		"input":    input,
		"output":   *output,
	}).Info("ran pipeline")
	return nil
}

// resolvePipeline treats source as a preset name, or otherwise as a pipeline
// file. It returns the pipeline and the default output suffix.
func (a *app) resolvePipeline(source string) (*pipeline.Pipeline, string, error) {
	if p, err := presets.New(source); err == nil {
		return p, source, nil
	}
	if _, err := os.Stat(source); err != nil {
		return nil, "", fmt.Errorf("%q is neither a preset (%s) nor a readable file",
			source, strings.Join(presets.Names(), ", "))
	}

	cfg, err := pipeline.ReadConfigFile(source)
	if err != nil {
		return nil, "", err
	}
	p, report := pipeline.FromConfig(cfg, a.styles.Register(filters.Registry()))
	for _, name := range report.Skipped() {
		a.log.WithField("operation", name).Warn("skipped unknown operation")
	}
	return p, a.cfg.Output.Suffix, nil
}

func (a *app) listStyles() error {
	for _, name := range a.styles.Names() {
		params, _ := a.styles.Style(name)
		keys := make([]string, 0, len(params))
		for k, v := range params {
			keys = append(keys, fmt.Sprintf("%s=%g", k, v))
		}
		sort.Strings(keys)
		fmt.Fprintf(a.out, "%-12s %s\n", name, strings.Join(keys, " "))
	}
	return nil
}

func (a *app) listOperations() error {
	for _, op := range filters.Operations() {
		params := make([]string, len(op.Params))
		for i, p := range op.Params {
			params[i] = p.Name
		}
		fmt.Fprintf(a.out, "%-22s %s (%s)\n", op.Name, op.Description, strings.Join(params, ", "))
	}
	fmt.Fprintf(a.out, "%-22s %s (%s)\n", styles.OperationName, "Apply a named style", "style, intensity")
	return nil
}

func (a *app) serve() error {
	a.log.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting MCP server")

	srv := server.New(server.Options{
		MaxInputBytes: a.cfg.Input.MaxSizeBytes(),
		JPEGQuality:   a.cfg.Output.JPEGQuality,
		Styles:        a.styles,
		Logger:        a.log,
		Version:       Version,
	})
	return srv.Run()
}
