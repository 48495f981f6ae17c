package terminal

import (
	"errors"
	"os"
	"runtime"
	"sync"

	gopty "github.com/aymanbagabas/go-pty"
)

// ErrReadWouldBlock may be returned by non-blocking Pty
// implementations. The reader treats it as "try again" and checks the
// shutdown flag before retrying, which bounds exit latency.
var ErrReadWouldBlock = errors.New("terminal: pty read would block")

// Pty is the pseudo-terminal the session reads output from and writes
// input to. The core does not care how it was allocated; the default
// implementation wraps a child process behind a cross-platform PTY.
type Pty interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Resize(rows, cols int) error
	Close() error
}

// ---------------------------------------------------------------------------
// processPty – go-pty backed child process
// ---------------------------------------------------------------------------

// processPty runs a child under a PTY using github.com/aymanbagabas/go-pty,
// which wraps Unix PTYs and Windows ConPTY behind one interface.
type processPty struct {
	pty gopty.Pty
	cmd *gopty.Cmd

	mu       sync.Mutex
	exited   bool
	exitCode int

	done chan struct{}
}

// startProcessPty spawns argv inside a new PTY of the given size.
func startProcessPty(argv []string, rows, cols int, dir string, env []string) (*processPty, error) {
	if len(argv) == 0 {
		argv = DefaultShell()
	}

	p, err := gopty.New()
	if err != nil {
		return nil, err
	}
	if err := p.Resize(cols, rows); err != nil {
		p.Close()
		return nil, err
	}

	cmd := p.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	// Child processes should see a capable terminal.
	cmd.Env = append(append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	), env...)

	if err := cmd.Start(); err != nil {
		p.Close()
		return nil, err
	}

	pp := &processPty{pty: p, cmd: cmd, done: make(chan struct{})}
	go pp.waitLoop()
	return pp, nil
}

// waitLoop reaps the child and records its exit code.
func (p *processPty) waitLoop() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.exited = true
	if err != nil {
		if p.cmd.ProcessState != nil {
			p.exitCode = p.cmd.ProcessState.ExitCode()
		} else {
			p.exitCode = 1
		}
	}
	p.mu.Unlock()
	close(p.done)
}

func (p *processPty) Read(b []byte) (int, error)  { return p.pty.Read(b) }
func (p *processPty) Write(b []byte) (int, error) { return p.pty.Write(b) }

// Resize updates the PTY size. go-pty takes (width, height).
func (p *processPty) Resize(rows, cols int) error {
	return p.pty.Resize(cols, rows)
}

// Close kills the child and closes the PTY, then waits for the reaper.
func (p *processPty) Close() error {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.pty.Close()
	<-p.done
	return err
}

// ExitStatus returns the child's exit code once it has exited.
func (p *processPty) ExitStatus() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.exited
}

// DefaultShell returns the user's shell command for the current OS.
func DefaultShell() []string {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return []string{comspec}
		}
		return []string{"cmd.exe"}
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return []string{shell}
	}
	return []string{"/bin/bash"}
}
