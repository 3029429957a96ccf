package tunnel

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"
)

// Conn is a uapi control channel, it is used for exactly one exchange and
// closed by whoever opened it
type Conn interface {
	io.Reader
	io.Writer

	// Flush sends buffered data
	Flush() error

	Close() error
}

type channel struct {
	net.Conn

	w *bufio.Writer
}

func newChannel(conn net.Conn) *channel {
	return &channel{
		Conn: conn,
		w:    bufio.NewWriter(conn),
	}
}

func (c *channel) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *channel) Flush() error {
	return c.w.Flush()
}

type deadlineSetter interface {
	SetDeadline(t time.Time) error
}

// applyDeadline propagates the context deadline to conn if supported
func applyDeadline(ctx context.Context, conn Conn) {
	dl, ok := ctx.Deadline()
	if !ok {
		return
	}

	if ds, ok := conn.(deadlineSetter); ok {
		_ = ds.SetDeadline(dl)
	}
}

// closeOnDone closes conn as soon as ctx is done, so a pending exchange
// fails instead of blocking, the returned func closes conn for good
func closeOnDone(ctx context.Context, conn Conn) func() {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	return func() {
		stop()
		_ = conn.Close()
	}
}
