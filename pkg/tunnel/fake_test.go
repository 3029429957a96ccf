package tunnel

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"
	"testing"

	"arhat.dev/pkg/log"
	"github.com/stretchr/testify/require"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/uapi"
)

var testLogger = log.Log.WithName("test")

// fakeHandler returns the response for the n-th (starting at 0) request
// of an operation, requests are recorded with their lines
type fakeHandler func(op string, n int, lines []string) (resp string, closeEarly bool)

// fakeDialer serves every Dial with a net.Pipe backed fake implementation
type fakeDialer struct {
	handler fakeHandler

	mu       sync.Mutex
	dialErrs []error
	dials    int
	requests map[string][][]string
}

func newFakeDialer(h fakeHandler) *fakeDialer {
	return &fakeDialer{
		handler:  h,
		requests: make(map[string][][]string),
	}
}

// failNext makes the following dials fail in order, nil entries succeed
func (d *fakeDialer) failNext(errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dialErrs = append(d.dialErrs, errs...)
}

func (d *fakeDialer) Dial(ctx context.Context, name string) (Conn, error) {
	d.mu.Lock()
	d.dials++
	if len(d.dialErrs) != 0 {
		err := d.dialErrs[0]
		d.dialErrs = d.dialErrs[1:]
		if err != nil {
			d.mu.Unlock()
			return nil, err
		}
	}
	d.mu.Unlock()

	client, server := net.Pipe()
	go d.serve(server)

	return newChannel(client), nil
}

func (d *fakeDialer) serve(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	s := uapi.NewScanner(conn)
	var lines []string
	for {
		line, err := s.Line()
		if err != nil {
			return
		}

		if line == "" {
			break
		}

		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return
	}

	op := strings.SplitN(lines[0], "=", 2)[0]

	d.mu.Lock()
	n := len(d.requests[op])
	d.requests[op] = append(d.requests[op], lines)
	d.mu.Unlock()

	resp, closeEarly := d.handler(op, n, lines)
	if resp != "" {
		_, _ = conn.Write([]byte(resp))
	}
	if closeEarly {
		return
	}

	// keep the channel open like a real implementation until the client
	// closed it
	_, _ = conn.Read(make([]byte, 1))
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dials
}

func (d *fakeDialer) requestLines(op string) [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([][]string(nil), d.requests[op]...)
}

func staticResponse(set, get string) fakeHandler {
	return func(op string, n int, lines []string) (string, bool) {
		if op == uapi.OperationSet {
			return set, false
		}
		return get, false
	}
}

var errDialFailed = errors.New("dial unix /var/run/wireguard/corplink.sock: connect: no such file or directory")

func newTestConfig(t *testing.T) *conf.WireGuardConfig {
	pk, err := wgtypes.GeneratePrivateKey()
	require.NoError(t, err)

	peer, err := wgtypes.GeneratePrivateKey()
	require.NoError(t, err)

	return &conf.WireGuardConfig{
		Executable:  "wg-corplink",
		Interface:   "corplink",
		PrivateKey:  pk.String(),
		PeerKey:     peer.PublicKey().String(),
		PeerAddress: "203.0.113.5:51820",
		Address:     "10.0.0.2",
		Mask:        24,
		MTU:         1280,
		Route:       []string{"10.0.0.0/24", "8.8.8.8"},
	}
}

// shortTempDir keeps unix socket paths below the platform length limit
func shortTempDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "uapi")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	return dir
}
