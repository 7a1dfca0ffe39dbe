package engine

import (
	"fmt"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/frame/layout"
	"go.uber.org/zap"
)

// Diagnostic is a problem encountered during a pass. Diagnostics never
// abort a pass; the affected subtree is left out of the result or marked
// as not rendered.
type Diagnostic struct {
	Pass    uint64
	Node    dom.NodeID
	Kind    layout.DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("pass %d: %s at node %d: %s", d.Pass, d.Kind, d.Node, d.Message)
}

// Reporter receives the diagnostics of completed passes. Report is called
// on the goroutine calling Reflow, after the pass has been published.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// logReporter writes diagnostics to the global zap logger.
type logReporter struct{}

func (logReporter) Report(d Diagnostic) {
	zap.L().Warn("layout diagnostic",
		zap.Uint64("pass", d.Pass),
		zap.Uint32("node", uint32(d.Node)),
		zap.Stringer("kind", d.Kind),
		zap.String("message", d.Message),
	)
}
