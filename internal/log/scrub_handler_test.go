package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestScrubHandler_StripsEscapeSequences tests that escape sequences in
// attribute values never reach the log output.
func TestScrubHandler_StripsEscapeSequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		key         string
		value       string
		wantPresent string
		wantAbsent  string
	}{
		{
			name:        "color codes are stripped",
			key:         "banner",
			value:       "\x1b[31mroot\x1b[0m",
			wantPresent: "banner=root",
			wantAbsent:  "31m",
		},
		{
			name:        "cursor movement is stripped",
			key:         "banner",
			value:       "\x1b[2J\x1b[Hlogin:",
			wantPresent: "banner=login:",
			wantAbsent:  "2J",
		},
		{
			name:        "window title sequence is stripped",
			key:         "banner",
			value:       "\x1b]0;owned\x07220 ready",
			wantPresent: "220 ready",
			wantAbsent:  "owned",
		},
		{
			name:        "clean banner passes through",
			key:         "banner",
			value:       "SSH-2.0-OpenSSH_9.6",
			wantPresent: "SSH-2.0-OpenSSH_9.6",
			wantAbsent:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewScrubLogger(&buf, true)

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()

			if strings.Contains(output, "\x1b") {
				t.Errorf("expected no raw escape byte in output, got: %q", output)
			}
			if !strings.Contains(output, tt.wantPresent) {
				t.Errorf("expected %q in output, but not found: %s", tt.wantPresent, output)
			}
			if tt.wantAbsent != "" && strings.Contains(output, tt.wantAbsent) {
				t.Errorf("expected %q to be stripped, but found in output: %s", tt.wantAbsent, output)
			}
		})
	}
}

// TestScrubHandler_ReplacesControlCharacters tests that control characters
// in attribute values are neutralized.
func TestScrubHandler_ReplacesControlCharacters(t *testing.T) {
	t.Parallel()

	t.Run("crlf is flattened to spaces", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewScrubLogger(&buf, true)

		logger.Info("test message", "banner", "220 mail\r\n250 ok")

		output := buf.String()
		if !strings.Contains(output, "220 mail  250 ok") {
			t.Errorf("expected flattened banner in output, got: %s", output)
		}
	})

	t.Run("nul byte becomes a dot", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewScrubLogger(&buf, true)

		logger.Info("test message", "banner", "abc\x00def")

		output := buf.String()
		if !strings.Contains(output, "abc.def") {
			t.Errorf("expected control byte replaced with dot, got: %s", output)
		}
	})
}

// TestScrubHandler_LogLevels tests that log levels are respected.
func TestScrubHandler_LogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		logLevel   slog.Level
		shouldShow bool
	}{
		{
			name:       "debug message shown in verbose mode",
			verbose:    true,
			logLevel:   slog.LevelDebug,
			shouldShow: true,
		},
		{
			name:       "debug message hidden in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelDebug,
			shouldShow: false,
		},
		{
			name:       "info message shown in verbose mode",
			verbose:    true,
			logLevel:   slog.LevelInfo,
			shouldShow: true,
		},
		{
			name:       "info message hidden in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelInfo,
			shouldShow: false,
		},
		{
			name:       "warn message shown in verbose mode",
			verbose:    true,
			logLevel:   slog.LevelWarn,
			shouldShow: true,
		},
		{
			name:       "warn message shown in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelWarn,
			shouldShow: true,
		},
		{
			name:       "error message shown in verbose mode",
			verbose:    true,
			logLevel:   slog.LevelError,
			shouldShow: true,
		},
		{
			name:       "error message shown in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelError,
			shouldShow: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewScrubLogger(&buf, tt.verbose)

			testMsg := "test_unique_message_12345"

			switch tt.logLevel {
			case slog.LevelDebug:
				logger.Debug(testMsg)
			case slog.LevelInfo:
				logger.Info(testMsg)
			case slog.LevelWarn:
				logger.Warn(testMsg)
			case slog.LevelError:
				logger.Error(testMsg)
			}

			output := buf.String()
			hasMessage := strings.Contains(output, testMsg)

			if tt.shouldShow && !hasMessage {
				t.Errorf("expected message to be shown, but not found in output: %s", output)
			}
			if !tt.shouldShow && hasMessage {
				t.Errorf("expected message to be hidden, but found in output: %s", output)
			}
		})
	}
}

// TestScrubHandler_WithAttrs tests that WithAttrs scrubs attributes.
func TestScrubHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewScrubLogger(&buf, true)

	// Add an attribute carrying escape sequences via With
	childLogger := logger.With("banner", "\x1b[31mred\x1b[0m")
	childLogger.Info("test message")

	output := buf.String()

	if strings.Contains(output, "\x1b") {
		t.Errorf("expected escape sequences scrubbed in WithAttrs, got: %q", output)
	}
	if !strings.Contains(output, "banner=red") {
		t.Errorf("expected scrubbed banner value in output, but not found: %s", output)
	}
}

// TestScrubHandler_WithGroup tests that WithGroup works correctly.
func TestScrubHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewScrubLogger(&buf, true)

	// Add group
	groupLogger := logger.WithGroup("probe")
	groupLogger.Info("test message", "port", "8080", "banner", "\x1b[31mred\x1b[0m")

	output := buf.String()

	// Port should be visible
	if !strings.Contains(output, "8080") {
		t.Errorf("expected port to be visible, but not found in output: %s", output)
	}

	// Escape sequences should be scrubbed
	if strings.Contains(output, "\x1b") {
		t.Errorf("expected escape sequences scrubbed in group, got: %q", output)
	}
}

// TestNewScrubJSONLogger tests JSON logger creation.
func TestNewScrubJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewScrubJSONLogger(&buf, true)

	logger.Info("test message", "banner", "\x1b[31mred\x1b[0m")

	output := buf.String()

	// Should be JSON format
	if !strings.Contains(output, "{") || !strings.Contains(output, "}") {
		t.Errorf("expected JSON format, but got: %s", output)
	}

	// Escape sequences should be scrubbed before JSON encoding
	if !strings.Contains(output, `"banner":"red"`) {
		t.Errorf("expected scrubbed banner value in output, but not found: %s", output)
	}
}

// TestNewScrubHandler_NilHandler tests that nil handler is handled gracefully.
func TestNewScrubHandler_NilHandler(t *testing.T) {
	t.Parallel()

	// Should not panic with nil handler
	handler := NewScrubHandler(nil)
	if handler == nil {
		t.Error("expected non-nil handler")
	}

	// Should be able to use the handler
	logger := slog.New(handler)
	logger.Info("test message") // Should not panic
}

// TestScrubString tests the scrubString helper.
func TestScrubString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean ascii unchanged",
			input: "SSH-2.0-OpenSSH_9.6",
			want:  "SSH-2.0-OpenSSH_9.6",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "csi color codes stripped",
			input: "\x1b[31mroot\x1b[0m",
			want:  "root",
		},
		{
			name:  "csi clear screen stripped",
			input: "\x1b[2J\x1b[Hlogin:",
			want:  "login:",
		},
		{
			name:  "osc title with bel terminator stripped",
			input: "\x1b]0;owned\x07220 ready",
			want:  "220 ready",
		},
		{
			name:  "osc title with st terminator stripped",
			input: "\x1b]0;owned\x1b\\220 ready",
			want:  "220 ready",
		},
		{
			name:  "unterminated osc swallows the remainder",
			input: "\x1b]0;half",
			want:  "",
		},
		{
			name:  "terminal reset stripped",
			input: "\x1bc220 ready",
			want:  "220 ready",
		},
		{
			name:  "crlf becomes two spaces",
			input: "220 mail\r\n250 ok",
			want:  "220 mail  250 ok",
		},
		{
			name:  "nul replaced with dot",
			input: "abc\x00def",
			want:  "abc.def",
		},
		{
			name:  "bare bell replaced with dot",
			input: "ding\x07",
			want:  "ding.",
		},
		{
			name:  "tab preserved",
			input: "col1\tcol2",
			want:  "col1\tcol2",
		},
		{
			name:  "delete replaced with dot",
			input: "a\x7fb",
			want:  "a.b",
		},
		{
			name:  "single-byte c1 csi replaced with dot",
			input: "31m",
			want:  ".31m",
		},
		{
			name:  "printable unicode preserved",
			input: "café",
			want:  "café",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := scrubString(tt.input)
			if got != tt.want {
				t.Errorf("scrubString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNeedsScrub tests the needsScrub fast path helper.
func TestNeedsScrub(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		// Printable ASCII stays on the fast path
		{"SSH-2.0-OpenSSH_9.6", false},
		{"col1\tcol2", false},
		{"", false},

		// Anything else takes the slow path
		{"\x1b[31m", true},
		{"line1\nline2", true},
		{"a\x7fb", true},
		{"café", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			result := needsScrub(tt.input)
			if result != tt.expected {
				t.Errorf("needsScrub(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
