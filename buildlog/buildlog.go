// Package buildlog tags structured log lines with the pipeline phase
// that produced them. BUILD-file evaluation and target materialization
// never execute build steps, so there is no stdout/stderr to stream -
// instead a Handler records one Line per evaluation/injection milestone,
// which callers can additionally mirror into logrus for human-facing
// output.
package buildlog

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stream tags a Line with the phase of the pipeline that produced it.
type Stream uint8

const (
	// StreamEvaluation tags lines produced while evaluating BUILD files.
	StreamEvaluation Stream = 1

	// StreamGraph tags lines produced while injecting targets into a
	// BuildGraph.
	StreamGraph Stream = 2

	// StreamCache tags lines produced by the invalidator or artifact
	// cache.
	StreamCache Stream = 3
)

func (s Stream) String() string {
	switch s {
	case StreamEvaluation:
		return "evaluation"
	case StreamGraph:
		return "graph"
	case StreamCache:
		return "cache"
	default:
		return "invalid"
	}
}

// Line is one record in a build log.
type Line struct {
	Stream  Stream
	Address string
	Text    string
}

func (l Line) String() string {
	return fmt.Sprintf("[%s] %s: %s", l.Stream, l.Address, l.Text)
}

// Handler receives Lines as they are produced. Close flushes any
// buffering the Handler performs.
type Handler interface {
	Log(Line) error
	io.Closer
}

// logrusHandler mirrors every Line into a logrus.Entry, with the line's
// stream and address attached as structured fields.
type logrusHandler struct {
	entry *logrus.Entry
	mu    sync.Mutex
}

// LogrusHandler returns a Handler that logs every Line through entry at
// Info level.
func LogrusHandler(entry *logrus.Entry) Handler {
	return &logrusHandler{entry: entry}
}

func (h *logrusHandler) Log(l Line) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entry.WithField("stream", l.Stream.String()).
		WithField("address", l.Address).
		Info(l.Text)
	return nil
}

func (h *logrusHandler) Close() error { return nil }

// Recorder is an in-memory Handler useful for tests: it simply
// accumulates every Line it receives.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *Recorder) Log(l Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, l)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Lines returns a copy of every Line recorded so far.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}
