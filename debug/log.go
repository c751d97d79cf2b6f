package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	out     *lumberjack.Logger
	mu      sync.Mutex
	enabled bool
)

// Options controls where the debug log goes and how it rotates
type Options struct {
	Path       string // defaults to DefaultPath()
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // old logs to keep
}

// DefaultPath is ~/.config/go-padmidi/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-padmidi", "debug.log")
}

// Enable starts debug logging. The terminal UI owns stdout, so logs only
// ever go to the file.
func Enable(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if opts.Path == "" {
		opts.Path = DefaultPath()
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 3
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return err
	}

	l := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	// Start each session in a fresh file; the previous one becomes a backup
	if err := l.Rotate(); err != nil {
		return err
	}

	out = l
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, "debug", "=== Debug logging started ===")

	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if out != nil {
		out.Close()
		out = nil
	}
	enabled = false
}

// Enabled reports whether Log currently writes anywhere
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || out == nil {
		return
	}

	ts := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
