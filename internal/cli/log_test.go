package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", LogInfo, func(l *log.Logger) { l.Info("decomposed") }, true},
		{"debug at info level", LogInfo, func(l *log.Logger) { l.Debug("separator") }, false},
		{"debug at debug level", LogDebug, func(l *log.Logger) { l.Debug("separator") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.start = prog.start.Add(-1500 * time.Millisecond)
	prog.done("Searched 12 separators")

	out := buf.String()
	if !strings.Contains(out, "Searched 12 separators (1.5") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}
	l := newLogger(&bytes.Buffer{}, LogInfo)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestVerboseFlag(t *testing.T) {
	dir, hg, cfg := writeFixture(t, triangle, "")
	out := filepath.Join(dir, "tri")

	tests := []struct {
		name      string
		verbose   bool
		wantLevel log.Level
	}{
		{"default", false, LogInfo},
		{"verbose", true, LogDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			c, root := newApp(&logs)
			args := []string{"--config", cfg, "decompose", hg, "-k", "2", "-f", "json", "-o", out}
			if tt.verbose {
				args = append(args, "-v")
			}
			root.SetArgs(args)
			root.SetOut(&bytes.Buffer{})
			if err := root.Execute(); err != nil {
				t.Fatalf("decompose: %v", err)
			}
			if got := c.Logger.GetLevel(); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}
			// Without --verbose the spinner draws progress instead of the log.
			if got := strings.Contains(logs.String(), "Searched"); got != tt.verbose {
				t.Errorf("separator summary logged = %v, want %v\n%s", got, tt.verbose, logs.String())
			}
		})
	}
}

func TestVerboseReachesCommandContext(t *testing.T) {
	dir, hg, cfg := writeFixture(t, triangle, "")
	out := filepath.Join(dir, "tri")
	if err := run(t, "--config", cfg, "decompose", hg, "-k", "2", "-f", "json", "-o", out); err != nil {
		t.Fatalf("decompose: %v", err)
	}

	var logs bytes.Buffer
	_, root := newApp(&logs)
	root.SetArgs([]string{"--config", cfg, "-v", "verify", hg, out + ".json"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(logs.String(), "verifying") {
		t.Errorf("verify did not log through the context logger:\n%s", logs.String())
	}
}
