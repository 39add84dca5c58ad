package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// ansiEscape matches ANSI terminal escape sequences: CSI sequences
// (colors, cursor movement, screen clearing), OSC sequences (window
// title changes) terminated by BEL or ST, and two-byte ESC sequences
// such as full terminal reset.
var ansiEscape = regexp.MustCompile(`\x1b(\[[0-?]*[ -/]*[@-~]|\][^\x07\x1b]*(\x07|\x1b\\)?|[@-~])`)

// ScrubHandler wraps an slog.Handler to neutralize untrusted strings.
// It intercepts log records and strips terminal escape sequences and
// control characters from string attribute values before passing them
// to the underlying handler. Data echoed by remote services (banners,
// error text carrying peer input) would otherwise reach the operator's
// terminal verbatim and could rewrite or hide log output.
//
// Design decision: We use a handler wrapper rather than scrubbing at
// each call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Peer data flows through many log sites; one choke point cannot be bypassed by a forgotten call
type ScrubHandler struct {
	// handler is the underlying slog handler that receives scrubbed records.
	handler slog.Handler
}

// NewScrubHandler creates a new ScrubHandler wrapping the given handler.
// All string attribute values will be scrubbed before being passed to the
// underlying handler. If handler is nil, the returned ScrubHandler will
// use slog.Default().Handler().
func NewScrubHandler(handler slog.Handler) *ScrubHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ScrubHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *ScrubHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle scrubs the record's attributes and passes it to the underlying handler.
func (h *ScrubHandler) Handle(ctx context.Context, r slog.Record) error {
	// Create a new record with scrubbed attributes
	scrubbed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	// Scrub each attribute
	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(h.scrubAttr(a))
		return true
	})

	return h.handler.Handle(ctx, scrubbed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are scrubbed before being added.
func (h *ScrubHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbedAttrs[i] = h.scrubAttr(a)
	}
	return &ScrubHandler{handler: h.handler.WithAttrs(scrubbedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *ScrubHandler) WithGroup(name string) slog.Handler {
	return &ScrubHandler{handler: h.handler.WithGroup(name)}
}

// scrubAttr scrubs a single attribute, recursively handling groups.
func (h *ScrubHandler) scrubAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		scrubbedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			scrubbedAttrs[i] = h.scrubAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, scrubString(a.Value.String()))
	}

	return a
}

// scrubString makes a string safe for terminals and log files. Escape
// sequences are removed entirely, CR and LF become single spaces so the
// record stays on one line, and remaining control characters are
// replaced with a dot. TAB is preserved: it aligns columns in banners
// and cannot change terminal state.
func scrubString(s string) string {
	if !needsScrub(s) {
		return s
	}

	s = ansiEscape.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			b.WriteRune('.')
		case r >= 0x80 && r <= 0x9f:
			// C1 control range: single-byte CSI and friends.
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// needsScrub reports whether s requires the full scrub pass. Printable
// ASCII (plus TAB), the overwhelmingly common case, passes through
// without allocation; anything else, including multi-byte runes that
// decode cleanly, takes the slow path.
func needsScrub(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 && c != '\t') || c >= 0x7f {
			return true
		}
	}
	return false
}

// NewScrubLogger creates a new slog.Logger with scrubbed output.
// String attribute values are made terminal-safe before being written.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewScrubLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	scrubHandler := NewScrubHandler(textHandler)

	return slog.New(scrubHandler)
}

// NewScrubJSONLogger creates a new slog.Logger with scrubbed output
// that writes JSON format. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger configured for JSON output with scrubbing.
func NewScrubJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	scrubHandler := NewScrubHandler(jsonHandler)

	return slog.New(scrubHandler)
}
