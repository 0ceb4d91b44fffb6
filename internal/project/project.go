// Package project orchestrates a multi-file build: discover every
// translation unit under a project root, run the lex/parse/sema
// pipeline over each one, and merge diagnostics. Analysis is single
// threaded within one translation unit's analyze/emit phase, but
// multiple independent translation units have no such constraint, so
// this package fans the per-file work out concurrently using
// golang.org/x/sync/errgroup's bounded-group primitive.
package project

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sysc/internal/diagnostics"
	"sysc/internal/irgen"
	"sysc/internal/lexer"
	"sysc/internal/parser"
	"sysc/internal/sema"
)

// SourceExt is the file extension this project's translation units use.
const SourceExt = ".sysc"

// Unit is one translation unit's analysis result.
type Unit struct {
	Path        string
	Source      []byte
	Diagnostics []*diagnostics.Diagnostic
	Module      *irgen.Builder
}

// Result is a whole-project build's combined outcome.
type Result struct {
	RunID       string
	Units       []Unit
	ErrorCount  int
	FileCount   int
}

// Discover walks root collecting every SourceExt file, sorted for
// deterministic build order (matching the "ordering guarantees" within
// a translation unit; across files, order only affects report order).
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Build analyzes every file in files concurrently, bounded by
// concurrency (0 means errgroup's own unbounded default), and collects
// results in input order regardless of completion order.
func Build(ctx context.Context, files []string, concurrency int) (*Result, error) {
	units := make([]Unit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			units[i] = analyzeFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString(), Units: units, FileCount: len(units)}
	for _, u := range units {
		res.ErrorCount += len(u.Diagnostics)
	}
	return res, nil
}

func analyzeFile(path string) Unit {
	src, err := os.ReadFile(path)
	if err != nil {
		d := diagnostics.New(diagnostics.Misc, diagnostics.Location{File: path}, "cannot read file: %v", err)
		return Unit{Path: path, Diagnostics: []*diagnostics.Diagnostic{d}}
	}

	scanner := lexer.NewScanner(string(src))
	toks := scanner.ScanTokens()

	p := parser.New(toks, path)
	tu := p.Parse()

	a := sema.New(path)
	a.AnalyzeTranslationUnit(tu)

	diags := append([]*diagnostics.Diagnostic{}, a.Sink.All()...)
	for _, le := range scanner.Errors() {
		diags = append(diags, diagnostics.New(diagnostics.Misc, diagnostics.Location{File: path}, "%v", le))
	}
	for _, pe := range p.Errors {
		diags = append(diags, diagnostics.New(diagnostics.Misc, diagnostics.Location{File: path}, "%v", pe))
	}

	return Unit{Path: path, Source: src, Diagnostics: diags, Module: a.Builder}
}
