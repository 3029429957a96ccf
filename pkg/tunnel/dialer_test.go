package tunnel

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dialRecorder struct {
	existsCalls int
	sleeps      []time.Duration
	dialPaths   []string

	appearAt int
	dialErr  error
}

func (r *dialRecorder) dialer() *Dialer {
	d := NewDialer(testLogger)
	d.SocketDir = "/run/test"
	d.exists = func(path string) bool {
		r.existsCalls++
		return r.appearAt > 0 && r.existsCalls >= r.appearAt
	}
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		r.sleeps = append(r.sleeps, dur)
		return nil
	}
	d.dial = func(ctx context.Context, path string) (net.Conn, error) {
		r.dialPaths = append(r.dialPaths, path)
		if r.dialErr != nil {
			return nil, r.dialErr
		}

		client, server := net.Pipe()
		_ = server.Close()
		return client, nil
	}

	return d
}

func TestDialer_SocketPath(t *testing.T) {
	d := NewDialer(testLogger)
	d.SocketDir = "/var/run/wireguard"

	assert.Equal(t, filepath.Join("/var/run/wireguard", "corplink.sock"), d.SocketPath("corplink"))
	assert.Equal(t, defaultSocketDir(), NewDialer(testLogger).SocketDir)
}

func TestDialer_Dial(t *testing.T) {
	t.Run("Socket Ready", func(t *testing.T) {
		r := &dialRecorder{appearAt: 1}
		conn, err := r.dialer().Dial(context.Background(), "corplink")
		require.NoError(t, err)
		_ = conn.Close()

		assert.Equal(t, 1, r.existsCalls)
		assert.Empty(t, r.sleeps)
		assert.Equal(t, []string{filepath.Join("/run/test", "corplink.sock")}, r.dialPaths)
	})

	t.Run("Socket Appears On Second Poll", func(t *testing.T) {
		r := &dialRecorder{appearAt: 2}
		conn, err := r.dialer().Dial(context.Background(), "corplink")
		require.NoError(t, err)
		_ = conn.Close()

		assert.Equal(t, 2, r.existsCalls)
		assert.Equal(t, []time.Duration{time.Second}, r.sleeps)
		assert.Len(t, r.dialPaths, 1)
	})

	t.Run("Socket Never Appears", func(t *testing.T) {
		r := &dialRecorder{dialErr: syscall.ENOENT}
		_, err := r.dialer().Dial(context.Background(), "corplink")
		require.Error(t, err)
		assert.True(t, errors.Is(err, syscall.ENOENT))

		assert.Equal(t, 3, r.existsCalls)
		assert.Len(t, r.sleeps, 3)
		// connect attempted exactly once after exhausting polls
		assert.Len(t, r.dialPaths, 1)
	})

	t.Run("Cancelled While Waiting", func(t *testing.T) {
		r := &dialRecorder{}
		d := r.dialer()
		d.sleep = sleepContext

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := d.Dial(ctx, "corplink")
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, r.dialPaths)
	})
}

func TestDialer_DialUnixSocket(t *testing.T) {
	dir := shortTempDir(t)

	d := NewDialer(testLogger)
	d.SocketDir = dir
	d.WaitPause = 10 * time.Millisecond

	l, err := net.Listen("unix", d.SocketPath("wgtest"))
	if err != nil {
		t.Skipf("unix socket not supported: %v", err)
	}
	defer func() { _ = l.Close() }()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		_, _ = c.Write([]byte("errno=0\n"))
		_ = c.Close()
	}()

	conn, err := d.Dial(context.Background(), "wgtest")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	buf := make([]byte, 8)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "errno=0\n", string(buf))

	_, err = d.Dial(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sleepContext(ctx, time.Hour))
}
