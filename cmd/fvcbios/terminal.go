// terminal.go - raw-terminal keystroke capture for the -headless frontend

/*
Grounded on the teacher's terminal_host.go: term.MakeRaw/term.Restore
bracket a background read loop so the headless frontend can forward
live keystrokes into machine.Keyboard the same way the windowed
backend forwards ebiten key events, without requiring a GUI window.
Only used by the BIOS `play` command; the REPL itself reads ordinary
line-buffered commands from stdin via bufio.Scanner.
*/

package main

import (
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalInput reads raw stdin bytes and forwards each one to fn until
// Stop is called.
type TerminalInput struct {
	fd       int
	oldState *term.State
	stopCh   chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewTerminalInput() *TerminalInput {
	return &TerminalInput{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts stdin in raw mode and begins forwarding bytes to fn.
func (t *TerminalInput) Start(fn func(byte)) error {
	t.fd = int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		close(t.done)
		return err
	}
	t.oldState = oldState

	if err := syscall.SetNonblock(t.fd, true); err != nil {
		_ = term.Restore(t.fd, t.oldState)
		close(t.done)
		return err
	}

	go func() {
		defer close(t.done)
		buf := make([]byte, 1)
		for {
			select {
			case <-t.stopCh:
				return
			default:
			}
			n, err := syscall.Read(t.fd, buf)
			if n > 0 {
				fn(buf[0])
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// Stop restores the terminal to its prior mode and waits for the read
// loop to exit.
func (t *TerminalInput) Stop() {
	t.once.Do(func() { close(t.stopCh) })
	<-t.done
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
	}
}
