package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowlane/sff/pkg/compiler"
	"github.com/flowlane/sff/pkg/config"
	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/debug"
	"github.com/flowlane/sff/pkg/export"
	"github.com/flowlane/sff/pkg/layout"
	"github.com/flowlane/sff/pkg/loader"
	"github.com/flowlane/sff/pkg/model"
	"github.com/flowlane/sff/pkg/validate"
	"github.com/flowlane/sff/pkg/version"
)

// Exit codes: 0 success, 1 logical error, 2 structural error, 3 I/O or internal.
const (
	exitSuccess       = 0
	exitLogicError    = 1
	exitStructural    = 2
	exitIOOrInternal  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitIOOrInternal
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return exitSuccess
	case "-v", "--version", "version":
		fmt.Printf("sff %s\n", version.Version)
		return exitSuccess
	case "validate":
		return cmdValidate(args[1:])
	case "compile":
		return cmdCompile(args[1:])
	case "preview":
		return cmdPreview(args[1:])
	case "export":
		return cmdExport(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return exitIOOrInternal
	}
}

func printUsage() {
	fmt.Println("Usage: sff <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate <file>                         check structural and logical validity")
	fmt.Println("  compile <file>                          compile to <base>.cpff")
	fmt.Println("  preview <file>                          print a human-readable summary")
	fmt.Println("  export <file> --format {svg,mermaid,dot,json,png} [--out <path>] [--lanes-only]")
	fmt.Println()
	fmt.Println("Exit codes: 0 success, 1 logical error, 2 structural error, 3 I/O or internal error")
}

func loadConfiguredEngine() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig(), err
	}
	if cfg.Debug.DumpDir != "" {
		layout.DumpDir = cfg.Debug.DumpDir
	}
	return cfg, nil
}

func compileFile(path string) (*model.CompileResult, int) {
	doc, err := loader.LoadDocument(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, exitIOOrInternal
	}

	c := compiler.New(validate.Structure, validate.Logic)
	cr, err := c.Compile(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, exitCodeForCompileError(err)
	}
	return cr, exitSuccess
}

func exitCodeForCompileError(err error) int {
	var structural *cpferr.StructuralError
	if errors.As(err, &structural) {
		return exitStructural
	}
	var logic *cpferr.LogicError
	if errors.As(err, &logic) {
		return exitLogicError
	}
	var selfLoop *cpferr.SelfLoopError
	if errors.As(err, &selfLoop) {
		return exitLogicError
	}
	var cycleErr *cpferr.CycleWithoutExitError
	if errors.As(err, &cycleErr) {
		return exitLogicError
	}
	return exitIOOrInternal
}

func computeLayout(cr *model.CompileResult, cfg config.Config) (*model.GeometricLayout, int) {
	opts := layout.Options{
		LaneWidth:           cfg.Layout.LaneWidth,
		BaseRankGap:         cfg.Layout.RankGap,
		MaxGlobalExpansions: cfg.Layout.MaxGlobalExpansions,
	}
	result, err := layout.ComputeWithOptions(cr, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var unscalable *cpferr.UnscalableStructureError
		if errors.As(err, &unscalable) {
			return nil, exitLogicError
		}
		return nil, exitIOOrInternal
	}
	return result, exitSuccess
}

func cmdValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitIOOrInternal
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sff validate <file>")
		return exitIOOrInternal
	}

	doc, err := loader.LoadDocument(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitIOOrInternal
	}

	if errs := validate.Structure(doc); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return exitStructural
	}
	if errs := validate.Logic(doc); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return exitLogicError
	}
	fmt.Println("ok")
	return exitSuccess
}

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitIOOrInternal
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sff compile <file>")
		return exitIOOrInternal
	}

	defer debug.LogEnterExit("cmd.compile")()

	cr, code := compileFile(fs.Arg(0))
	if cr == nil {
		return code
	}

	out := strings.TrimSuffix(fs.Arg(0), filepath.Ext(fs.Arg(0))) + ".cpff"
	if err := writeCPFF(out, cr); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", out, err)
		return exitIOOrInternal
	}
	fmt.Println(out)
	return exitSuccess
}

// writeCPFF persists a compiled result as stable JSON: 2-space indent,
// non-ASCII preserved verbatim (no \u escapes for labels).
func writeCPFF(path string, cr *model.CompileResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cr)
}

func cmdPreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitIOOrInternal
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sff preview <file>")
		return exitIOOrInternal
	}

	cfg, _ := loadConfiguredEngine()
	cr, code := compileFile(fs.Arg(0))
	if cr == nil {
		return code
	}
	geo, code := computeLayout(cr, cfg)
	if geo == nil {
		return code
	}

	fmt.Printf("direction:       %s\n", cr.CPFF.LayoutContext.Direction)
	fmt.Printf("lanes:           %d\n", cr.CPFF.Stats.LanesTotal)
	fmt.Printf("nodes:           %d\n", cr.CPFF.Stats.NodesTotal)
	fmt.Printf("edges:           %d\n", cr.CPFF.Stats.EdgesTotal)
	fmt.Printf("decisions:       %d\n", cr.CPFF.Stats.DecisionNodes)
	fmt.Printf("cycles:          %d (max depth %d)\n", cr.CPFF.Stats.CyclesTotal, cr.CPFF.Stats.MaxCycleDepth)
	fmt.Printf("estimated size:  %.0fx%.0f px\n", geo.Complexity.EstimatedWidth, geo.Complexity.EstimatedHeight)
	return exitSuccess
}

func cmdExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "json", "export format: svg, mermaid, dot, json, png")
	outPath := fs.String("out", "", "output path (defaults to stdout for text formats)")
	lanesOnly := fs.Bool("lanes-only", false, "export lane boundaries only")
	if err := fs.Parse(args); err != nil {
		return exitIOOrInternal
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sff export <file> --format {svg,mermaid,dot,json,png} [--out <path>] [--lanes-only]")
		return exitIOOrInternal
	}

	cfg, _ := loadConfiguredEngine()
	cr, code := compileFile(fs.Arg(0))
	if cr == nil {
		return code
	}

	f := strings.ToLower(*format)
	if f == "svg" || f == "png" {
		geo, code := computeLayout(cr, cfg)
		if geo == nil {
			return code
		}
		path := *outPath
		if path == "" {
			path = strings.TrimSuffix(fs.Arg(0), filepath.Ext(fs.Arg(0))) + "." + f
		}
		if err := export.SaveSnapshot(cr, geo, export.SnapshotOptions{Path: path, Format: f}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitIOOrInternal
		}
		fmt.Println(path)
		return exitSuccess
	}

	var expFormat export.Format
	switch f {
	case "mermaid":
		expFormat = export.FormatMermaid
	case "dot":
		expFormat = export.FormatDOT
	default:
		expFormat = export.FormatJSON
	}

	result, err := export.ExportGraph(cr, export.Config{Format: expFormat, LanesOnly: *lanesOnly})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitIOOrInternal
	}

	var payload []byte
	if expFormat == export.FormatJSON {
		payload, err = result.JSON()
	} else {
		payload = []byte(result.Graph)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitIOOrInternal
	}

	if *outPath == "" {
		fmt.Println(string(payload))
		return exitSuccess
	}
	if err := os.WriteFile(*outPath, payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *outPath, err)
		return exitIOOrInternal
	}
	fmt.Println(*outPath)
	return exitSuccess
}
