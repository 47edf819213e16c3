// Command ifcanalyze runs the static information-flow analyzer over one or
// more Go-like source files (or directories, walked via the project
// detector) and reports any insecure flow as a diagnostic.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/viant/afs"

	"github.com/taintflow/ifc/analysis"
	"github.com/taintflow/ifc/config"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/parser"
	"github.com/taintflow/ifc/project"
	"github.com/taintflow/ifc/span"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("ifcanalyze", flag.ContinueOnError)
	format := fs.String("format", "", "output format: text (default) or yaml")
	color := fs.Bool("color", false, "colorize text output")
	configPath := fs.String("config", "", "optional YAML config file (sink presets, output format)")
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: ifcanalyze [flags] <file-or-dir> ...")
		return 2
	}

	ctx := context.Background()
	fileSystem := afs.New()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(ctx, fileSystem, *configPath)
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrap(err, "loading config"))
			return 2
		}
		cfg = loaded
	}
	if *format != "" {
		cfg.Format = config.Format(*format)
	}
	if *color {
		cfg.Color = true
	}

	sourceURLs, err := resolveSources(ctx, fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "resolving source files"))
		return 2
	}

	files, parseErrs := parseAll(ctx, fileSystem, sourceURLs)
	if len(parseErrs) > 0 {
		// spec.md §7: a parse failure is the single fatal condition; abort
		// analysis and report only the parse errors.
		return render(stdout, stderr, parseErrs, cfg)
	}

	diags := analysis.AnalyzeWithResolver(files, cfg.Resolver())
	return render(stdout, stderr, diags, cfg)
}

// resolveSources expands each CLI argument into a flat list of file URLs: a
// directory argument is handed to project.Detector, a file argument is used
// as-is.
func resolveSources(ctx context.Context, args []string) ([]string, error) {
	detector := project.NewDetector()
	var urls []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", arg)
		}
		if !info.IsDir() {
			urls = append(urls, arg)
			continue
		}
		proj, err := detector.Detect(ctx, arg)
		if err != nil {
			return nil, errors.Wrapf(err, "detecting project under %s", arg)
		}
		urls = append(urls, proj.SourceURLs...)
	}
	return urls, nil
}

func parseAll(ctx context.Context, fileSystem afs.Service, urls []string) ([]analysis.File, []diagnostic.Diagnostic) {
	var files []analysis.File
	var diags []diagnostic.Diagnostic
	for id, url := range urls {
		content, err := fileSystem.DownloadWithURL(ctx, url)
		if err != nil {
			diags = append(diags, diagnostic.New(diagnostic.Parsing, id, span.Span{File: id}, err.Error()))
			continue
		}
		tree, err := parser.Parse(id, content)
		if err != nil {
			diags = append(diags, diagnostic.New(diagnostic.Parsing, id, span.Span{File: id}, err.Error()))
			continue
		}
		files = append(files, analysis.File{ID: id, Tree: tree})
	}
	return files, diags
}

func render(stdout, stderr *os.File, diags []diagnostic.Diagnostic, cfg *config.Config) int {
	var err error
	switch cfg.Format {
	case config.FormatYAML:
		err = diagnostic.WriteYAML(stdout, diags)
	default:
		err = diagnostic.WriteTextColor(stdout, diags, cfg.Color)
	}
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "rendering diagnostics"))
		return 2
	}
	return diagnostic.ExitCode(diags)
}
