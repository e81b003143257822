// Package pyworker runs long-lived Python helper processes that speak a
// request/response line protocol over stdin/stdout. The MediaPipe landmark
// service and external gesture models both run through it.
package pyworker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long a worker may sit unused before its process
// is shut down. The next Call restarts it.
const DefaultIdleTimeout = 30 * time.Second

// ErrScriptNotFound is returned when the helper script cannot be located.
var ErrScriptNotFound = errors.New("script not found")

// Config describes a helper process.
type Config struct {
	// Script is the path to the Python script.
	Script string
	// Args are extra command line arguments passed after the script.
	Args []string
	// Python is the interpreter. Empty means a project venv or python3.
	Python string
	// IdleTimeout is the idle shutdown delay. Zero means DefaultIdleTimeout,
	// negative disables idle shutdown.
	IdleTimeout time.Duration
	// Logger receives lifecycle messages. Nil means slog.Default().
	Logger *slog.Logger
}

// Worker manages one helper process. It is safe for concurrent use; calls
// are serialized.
type Worker struct {
	cfg       Config
	log       *slog.Logger
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
	lastUsed  time.Time
}

// New creates a Worker. The process is started lazily on the first Call.
func New(cfg Config) *Worker {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Worker{
		cfg: cfg,
		log: l.With("script", filepath.Base(cfg.Script)),
	}
}

// Call sends one request, written by write, and returns the single response
// line without its trailing newline.
func (w *Worker) Call(write func(io.Writer) error) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureStarted(); err != nil {
		return nil, err
	}

	if err := write(w.stdin); err != nil {
		w.kill()
		return nil, fmt.Errorf("write request: %w", err)
	}

	line, err := w.stdout.ReadBytes('\n')
	if err != nil {
		w.kill()
		return nil, fmt.Errorf("read response: %w", err)
	}

	w.lastUsed = time.Now()
	w.resetIdleTimer()

	return line[:len(line)-1], nil
}

// Running reports whether the helper process is currently alive.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// Close shuts the process down.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shutdown()
}

func (w *Worker) ensureStarted() error {
	if w.started {
		return nil
	}

	if _, err := os.Stat(w.cfg.Script); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, w.cfg.Script)
	}

	python := w.cfg.Python
	if python == "" {
		python = FindPython()
	}
	if python == "" {
		python = "python3"
	}

	args := append([]string{w.cfg.Script}, w.cfg.Args...)
	w.cmd = exec.Command(python, args...)

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := w.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	w.cmd.Stderr = os.Stderr

	if err := w.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(w.cfg.Script), err)
	}

	w.stdin = stdin
	w.stdout = bufio.NewReader(stdout)
	w.started = true
	w.lastUsed = time.Now()
	w.log.Info("helper process started", "python", python, "pid", w.cmd.Process.Pid)

	return nil
}

// kill tears down a process whose pipe broke mid-call so the next Call
// starts a fresh one.
func (w *Worker) kill() {
	if w.cmd != nil && w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	if err := w.shutdown(); err != nil {
		w.log.Debug("helper exited", "error", err)
	}
}

func (w *Worker) shutdown() error {
	if !w.started {
		return nil
	}

	if w.idleTimer != nil {
		w.idleTimer.Stop()
		w.idleTimer = nil
	}

	if w.stdin != nil {
		w.stdin.Close()
	}

	err := w.cmd.Wait()
	w.started = false
	w.cmd = nil
	w.stdin = nil
	w.stdout = nil
	w.log.Info("helper process stopped")

	return err
}

func (w *Worker) resetIdleTimer() {
	if w.cfg.IdleTimeout < 0 {
		return
	}
	if w.idleTimer != nil {
		w.idleTimer.Stop()
	}
	w.idleTimer = time.AfterFunc(w.cfg.IdleTimeout, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if time.Since(w.lastUsed) < w.cfg.IdleTimeout {
			return
		}
		w.shutdown()
	})
}

// FindScript looks for a helper script by file name in the scripts
// directory next to the working directory, the executable, and ~/.mudra.
// Returns an empty string if nothing is found.
func FindScript(name string) string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
		filepath.Join(os.Getenv("HOME"), ".mudra", "scripts", name),
	}

	return firstExisting(candidates)
}

// FindPython looks for a Python interpreter in a virtual environment.
func FindPython() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
