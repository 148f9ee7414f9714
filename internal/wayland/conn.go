package wayland

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Conn is a buffered connection to a Wayland compositor. Requests are
// queued until Flush so that related requests reach the compositor together.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// SocketPath resolves a display name the way libwayland does: an empty
// name falls back to $WAYLAND_DISPLAY and then "wayland-0", and relative
// names live in $XDG_RUNTIME_DIR.
func SocketPath(name string) (string, error) {
	if name == "" {
		name = os.Getenv("WAYLAND_DISPLAY")
	}
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}

	runDir := os.Getenv("XDG_RUNTIME_DIR")
	if runDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runDir, name), nil
}

// Dial connects to the compositor socket for display name
func Dial(name string) (*Conn, error) {
	path, err := SocketPath(name)
	if err != nil {
		return nil, err
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland socket %s: %w", path, err)
	}
	return NewConn(conn), nil
}

// NewConn wraps an established connection
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		r:    bufio.NewReaderSize(conn, 64*1024),
		w:    bufio.NewWriterSize(conn, 16*1024),
	}
}

// Send queues m for the next Flush
func (c *Conn) Send(m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("failed to queue request: %w", err)
	}
	return nil
}

// Flush writes all queued requests to the socket
func (c *Conn) Flush() error {
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush requests: %w", err)
	}
	return nil
}

// ReadMessage blocks until a complete message has been read
func (c *Conn) ReadMessage() (Message, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		return Message{}, err
	}

	object, opcode, size := parseHeader(header[:])
	if size < headerSize {
		return Message{}, fmt.Errorf("invalid message size %d for object %d", size, object)
	}

	body := make([]byte, size-headerSize)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return Message{}, fmt.Errorf("failed to read message body: %w", err)
	}
	return Message{Object: object, Opcode: opcode, Body: body}, nil
}

// Buffered returns the number of received bytes not yet consumed
func (c *Conn) Buffered() int {
	return c.r.Buffered()
}

// Interrupt unblocks a pending ReadMessage, which then fails
func (c *Conn) Interrupt() error {
	return c.conn.SetReadDeadline(time.Now())
}

// Close closes the socket
func (c *Conn) Close() error {
	return c.conn.Close()
}
