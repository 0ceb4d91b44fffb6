// Package lspserver pushes live diagnostics to a connected editor client
// as documents are re-analyzed, over a websocket connection: an editor
// opens one, sends the document text on every edit, and receives a fresh
// diagnostic list back whenever the lex/parse/sema pipeline finishes.
package lspserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"sysc/internal/diagnostics"
	"sysc/internal/lexer"
	"sysc/internal/parser"
	"sysc/internal/sema"
)

// Document is one open text buffer tracked by URI with a monotonically
// increasing version.
type Document struct {
	URI     string
	Content string
	Version int
}

// Position and Range follow LSP's own 0-indexed line/column convention.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is the wire shape sent to the client, lowered from an
// internal/diagnostics.Diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Source   string `json:"source"`
}

const severityError = 1

// analyzeResult is what ServeHTTP and Broadcast send over the socket for
// one document version.
type analyzeResult struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Server holds every client socket currently subscribed to diagnostics
// for its own document, keyed by URI.
type Server struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	docs     map[string]*Document
	conns    map[string]*websocket.Conn
}

// NewServer builds a Server with a permissive origin check, matching the
// teacher's LSP server's lack of any auth layer (it trusted stdio).
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		docs:     make(map[string]*Document),
		conns:    make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades the connection and runs the per-client read loop
// until the socket closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg struct {
			URI     string `json:"uri"`
			Content string `json:"content"`
			Version int    `json:"version"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			s.forget(msg.URI)
			return
		}
		s.mu.Lock()
		s.docs[msg.URI] = &Document{URI: msg.URI, Content: msg.Content, Version: msg.Version}
		s.conns[msg.URI] = conn
		s.mu.Unlock()

		result := s.analyze(msg.URI, msg.Content, msg.Version)
		if err := conn.WriteJSON(result); err != nil {
			return
		}
	}
}

func (s *Server) forget(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	delete(s.conns, uri)
	s.mu.Unlock()
}

// analyze runs the lex/parse/sema pipeline over content and lowers any
// recorded diagnostics to the wire shape.
func (s *Server) analyze(uri, content string, version int) analyzeResult {
	scanner := lexer.NewScanner(content)
	toks := scanner.ScanTokens()
	lexErrs := scanner.Errors()
	p := parser.New(toks, uri)
	tu := p.Parse()

	a := sema.New(uri)
	a.AnalyzeTranslationUnit(tu)

	out := make([]Diagnostic, 0, len(lexErrs)+a.Sink.Count())
	for _, le := range lexErrs {
		out = append(out, Diagnostic{
			Severity: severityError,
			Message:  le.Error(),
			Source:   "sysc-lex",
		})
	}
	for _, pe := range p.Errors {
		out = append(out, Diagnostic{Severity: severityError, Message: pe.Error(), Source: "sysc-parse"})
	}
	for _, d := range a.Sink.All() {
		out = append(out, Diagnostic{
			Range:    rangeAt(diagLoc(d)),
			Severity: severityError,
			Message:  fmt.Sprintf("%s: %s", d.Kind, d.Message),
			Source:   "sysc-sema",
		})
	}
	return analyzeResult{URI: uri, Version: version, Diagnostics: out}
}

func diagLoc(d *diagnostics.Diagnostic) diagnostics.Location { return d.Location }

func rangeAt(loc diagnostics.Location) Range {
	p := Position{Line: max0(loc.Line - 1), Character: max0(loc.Column - 1)}
	return Range{Start: p, End: Position{Line: p.Line, Character: p.Character + 1}}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Broadcast re-analyzes the stored document for uri and sends the
// resulting diagnostics to its subscribed client, without waiting for an
// editor edit message.
func (s *Server) Broadcast(uri string) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	conn := s.conns[uri]
	s.mu.Unlock()
	if !ok || conn == nil {
		return fmt.Errorf("no subscribed client for %s", uri)
	}
	result := s.analyze(uri, doc.Content, doc.Version)
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
