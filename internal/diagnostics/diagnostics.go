// Package diagnostics is the error taxonomy described in the compiler
// core's error-handling design: every analyzer error carries a source
// location and a kind, is collected into a stream rather than aborting
// the walk, and is counted so the driver can report overall failure.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Kind classifies a diagnostic into the taxonomy: name resolution,
// redefinition, type errors, const/lvalue misuse, statement-context
// misuse, and miscellaneous declaration errors.
type Kind string

const (
	NameResolution Kind = "name-resolution"
	Redefinition   Kind = "redefinition"
	TypeError      Kind = "type-error"
	ConstLvalue    Kind = "const-lvalue"
	Context        Kind = "context"
	Misc           Kind = "misc"
)

// Location pinpoints a diagnostic in source text.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is one recorded analyzer failure. It implements error so it
// can be wrapped with github.com/pkg/errors wherever a caller needs to
// attach additional stack context while still exposing Kind/Location to
// callers that want to render a taxonomy-aware report.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Location Location
	cause    error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Kind, d.Message)
}

// Unwrap exposes any wrapped cause to errors.Is/errors.As callers.
func (d *Diagnostic) Unwrap() error { return d.cause }

// New builds a diagnostic of the given kind at loc, wrapped with
// github.com/pkg/errors so it carries a stack trace from the point of
// detection.
func New(kind Kind, loc Location, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
	d.cause = errors.WithStack(d)
	return d
}

// Sink accumulates diagnostics across a whole compilation run. The
// semantic analyzer reports into one Sink per invocation; a nonzero
// Sink.Count() makes the run a failure without aborting the walk, per
// the core's propagation rule.
type Sink struct {
	diags []*Diagnostic
}

// Report appends d to the sink.
func (s *Sink) Report(d *Diagnostic) { s.diags = append(s.diags, d) }

// Errorf is a convenience that builds and reports a diagnostic in one call.
func (s *Sink) Errorf(kind Kind, loc Location, format string, args ...any) {
	s.Report(New(kind, loc, format, args...))
}

// Count returns the number of diagnostics recorded.
func (s *Sink) Count() int { return len(s.diags) }

// Failed reports whether any diagnostic was recorded.
func (s *Sink) Failed() bool { return len(s.diags) > 0 }

// All returns the recorded diagnostics sorted by source position, for
// stable reporting regardless of analysis order.
func (s *Sink) All() []*Diagnostic {
	out := append([]*Diagnostic{}, s.diags...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}
