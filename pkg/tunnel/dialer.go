package tunnel

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"arhat.dev/pkg/log"

	"arhat.dev/corplink/pkg/constant"
)

// ChannelDialer opens a fresh control channel to the named interface
type ChannelDialer interface {
	Dial(ctx context.Context, name string) (Conn, error)
}

// Dialer connects to uapi sockets at <SocketDir>/<name>.sock
type Dialer struct {
	// SocketDir defaults to /var/run/wireguard, or the temporary
	// directory on windows
	SocketDir string

	// WaitAttempts is how many times the socket existence is checked
	// before connecting
	WaitAttempts int
	// WaitPause is the pause after every failed existence check
	WaitPause time.Duration

	logger log.Interface

	exists func(path string) bool
	sleep  func(ctx context.Context, d time.Duration) error
	dial   func(ctx context.Context, path string) (net.Conn, error)
}

func NewDialer(logger log.Interface) *Dialer {
	return &Dialer{
		SocketDir:    defaultSocketDir(),
		WaitAttempts: constant.SocketWaitAttempts,
		WaitPause:    constant.SocketWaitPause,

		logger: logger,

		exists: pathExists,
		sleep:  sleepContext,
		dial:   dialUnix,
	}
}

func (d *Dialer) SocketPath(name string) string {
	return filepath.Join(d.SocketDir, name+constant.SocketSuffix)
}

// Dial waits for the socket file to be created by the implementation, then
// connects to it
//
// the wait is best effort, connect is attempted even when the socket never
// showed up, and fails with its natural error then
func (d *Dialer) Dial(ctx context.Context, name string) (Conn, error) {
	path := d.SocketPath(name)

	err := d.waitSocket(ctx, path)
	if err != nil {
		return nil, err
	}

	d.logger.V("connecting uapi socket", log.String("path", path))
	conn, err := d.dial(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect uapi socket %s: %w", path, err)
	}

	return newChannel(conn), nil
}

func (d *Dialer) waitSocket(ctx context.Context, path string) error {
	for i := 0; i < d.WaitAttempts; i++ {
		if d.exists(path) {
			return nil
		}

		d.logger.D("uapi socket not ready", log.String("path", path), log.Any("pause", d.WaitPause))
		err := d.sleep(ctx, d.WaitPause)
		if err != nil {
			return fmt.Errorf("wait for uapi socket %s: %w", path, err)
		}
	}

	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unix domain sockets are available on windows 10 and later as well
func dialUnix(ctx context.Context, path string) (net.Conn, error) {
	return (&net.Dialer{}).DialContext(ctx, "unix", path)
}
