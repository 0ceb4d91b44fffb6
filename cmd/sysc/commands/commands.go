// cmd/sysc/commands/commands.go
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"sysc/internal/buildcache"
	"sysc/internal/project"
)

// BuildCommand analyzes every translation unit under the given root
// (default ".") and prints an end-of-build summary. Every file is
// analyzed on each run; the emitted IR is stored in internal/buildcache
// keyed by source hash, and stored entries are not read back.
func BuildCommand(args []string) error {
	return runBuild(args, true)
}

// CheckCommand is BuildCommand without ever writing to the cache —
// useful for CI, where a throwaway environment makes caching pointless.
func CheckCommand(args []string) error {
	return runBuild(args, false)
}

func runBuild(args []string, useCache bool) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}

	files, err := project.Discover(absRoot)
	if err != nil {
		return fmt.Errorf("discover sources: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("sysc: no %s files found under %s\n", project.SourceExt, absRoot)
		return nil
	}

	var cache *buildcache.Cache
	if useCache {
		cachePath := filepath.Join(absRoot, ".sysc-cache.db")
		cache, err = buildcache.Open(cachePath)
		if err != nil {
			return fmt.Errorf("open build cache: %w", err)
		}
		defer cache.Close()
	}

	start := time.Now()
	result, err := project.Build(context.Background(), files, 0)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	elapsed := time.Since(start)

	totalBytes := 0
	for _, u := range result.Units {
		report(u)
		if u.Module == nil {
			continue
		}
		irText := u.Module.Module.String()
		totalBytes += len(irText)
		if cache != nil {
			h := buildcache.Hash(u.Source)
			if _, err := cache.Store(context.Background(), h, irText, len(u.Diagnostics)); err != nil {
				fmt.Fprintf(os.Stderr, "sysc: cache store for %s: %v\n", u.Path, err)
			}
		}
	}

	summary := fmt.Sprintf("sysc: %d file(s), %d error(s), %s IR emitted in %s",
		result.FileCount, result.ErrorCount, humanize.Bytes(uint64(totalBytes)), elapsed.Round(time.Millisecond))
	if isatty.IsTerminal(os.Stdout.Fd()) && result.ErrorCount > 0 {
		summary = "\x1b[31m" + summary + "\x1b[0m"
	}
	fmt.Println(summary)

	if result.ErrorCount > 0 {
		return fmt.Errorf("build failed with %d error(s)", result.ErrorCount)
	}
	return nil
}

func report(u project.Unit) {
	for _, d := range u.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s\n", u.Path, d.Error())
	}
}

// WatchCommand re-runs BuildCommand every time a file under root
// changes, using internal/project's inotify-backed Watcher.
func WatchCommand(args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}

	w, err := project.NewWatcher(absRoot)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	fmt.Printf("sysc watch: watching %s\n", absRoot)
	if err := runBuild([]string{absRoot}, true); err != nil {
		fmt.Fprintf(os.Stderr, "sysc watch: %v\n", err)
	}
	for {
		changed, err := w.Next()
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		if len(changed) == 0 {
			continue
		}
		fmt.Println("sysc watch: change detected, rebuilding")
		if err := runBuild([]string{absRoot}, true); err != nil {
			fmt.Fprintf(os.Stderr, "sysc watch: %v\n", err)
		}
	}
}
