// cmd/sysc/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"sysc/cmd/sysc/commands"
	"sysc/internal/lspserver"
)

const version = "0.1.0"

// Build variables, set via -ldflags.
var (
	buildDate = time.Now().Format("2006-01-02")
	gitCommit = "unknown"
)

// commandAliases maps single-letter shorthands to their full command name.
var commandAliases = map[string]string{
	"b": "build",
	"c": "check",
	"w": "watch",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
		args[0] = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("sysc %s (%s, built %s)\n", version, gitCommit, buildDate)
	case "build":
		if err := commands.BuildCommand(args[1:]); err != nil {
			log.Fatalf("sysc build: %v", err)
		}
	case "check":
		if err := commands.CheckCommand(args[1:]); err != nil {
			log.Fatalf("sysc check: %v", err)
		}
	case "watch":
		if err := commands.WatchCommand(args[1:]); err != nil {
			log.Fatalf("sysc watch: %v", err)
		}
	case "lsp":
		startLSP()
	default:
		fmt.Fprintf(os.Stderr, "sysc: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

// startLSP serves the websocket diagnostics server on :7357, blocking
// until the process is killed.
func startLSP() {
	srv := lspserver.NewServer()
	addr := ":7357"
	fmt.Fprintf(os.Stderr, "sysc lsp: listening on %s\n", addr)
	http.Handle("/", srv)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("sysc lsp: %v", err)
	}
}

func showUsage() {
	fmt.Println(`sysc - a batch compiler for the static-OOP source language

Usage:
  sysc build <dir>     analyze every .sysc file under dir, report diagnostics
  sysc check <dir>     like build, but never writes cached IR
  sysc watch <dir>     re-run build whenever a watched file changes (alias: w)
  sysc lsp              serve live diagnostics over a websocket
  sysc version          print build metadata
  sysc help             show this message`)
}
