// Package tty collects keyboard input for the emulated standard input when
// the host's stdin is a terminal.
package tty

import (
	"bytes"
	goIO "io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	ctrlD     = 0x04
	backspace = 0x7F
	ctrlH     = 0x08
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type console struct {
	in                     *os.File
	echo                   goIO.Writer
	originalTerminalConfig unix.Termios
}

// this configures the terminal to run in non-canonical mode without echo
func (c *console) enableRawMode() error {
	if err := termios.Tcgetattr(c.in.Fd(), &c.originalTerminalConfig); err != nil {
		return err
	}
	newTermios := c.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	newTermios.Cc[unix.VMIN] = 1
	newTermios.Cc[unix.VTIME] = 0
	return termios.Tcsetattr(c.in.Fd(), termios.TCSANOW, &newTermios)
}

func (c *console) disableRawMode() error {
	return termios.Tcsetattr(c.in.Fd(), termios.TCSANOW, &c.originalTerminalConfig)
}

// Capture reads keystrokes from in until Ctrl-D or end of file, echoing
// them to echo, and returns the collected bytes. Carriage returns become
// line feeds and backspace removes the previous byte.
func Capture(in *os.File, echo goIO.Writer) ([]byte, error) {
	c := &console{in: in, echo: echo}
	if err := c.enableRawMode(); err != nil {
		return nil, err
	}
	defer c.disableRawMode()

	var buf bytes.Buffer
	key := make([]byte, 1)
	for {
		n, err := in.Read(key)
		if err == goIO.EOF || (n == 1 && key[0] == ctrlD) {
			break
		}
		if err != nil {
			return buf.Bytes(), err
		}
		if n == 0 {
			continue
		}
		switch b := key[0]; b {
		case backspace, ctrlH:
			if buf.Len() > 0 {
				buf.Truncate(buf.Len() - 1)
				c.echo.Write([]byte("\b \b"))
			}
		case '\r', '\n':
			buf.WriteByte('\n')
			c.echo.Write([]byte("\r\n"))
		default:
			buf.WriteByte(b)
			c.echo.Write(key)
		}
	}
	return buf.Bytes(), nil
}
