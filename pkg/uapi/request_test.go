package uapi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkWriter accepts at most n bytes per Write call
type chunkWriter struct {
	n     int
	calls int
	buf   bytes.Buffer
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) > w.n {
		p = p[:w.n]
	}
	return w.buf.Write(p)
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

type zeroWriter struct{}

func (zeroWriter) Write(p []byte) (int, error) {
	return 0, nil
}

func TestRequest_Bytes(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		expected string
	}{
		{
			name:     "Get",
			req:      NewGetRequest(),
			expected: "get=1\n\n",
		},
		{
			name:     "Set Empty",
			req:      NewSetRequest(),
			expected: "set=1\n\n",
		},
		{
			name: "Set Typed Values",
			req: NewSetRequest().
				SetBool("replace_peers", true).
				SetInt("mtu", 1280).
				Set("endpoint", "203.0.113.5:51820"),
			expected: "set=1\nreplace_peers=true\nmtu=1280\nendpoint=203.0.113.5:51820\n\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, string(test.req.Bytes()))
			assert.Equal(t, test.expected, test.req.String())
			// serialization must not consume the request
			assert.Equal(t, test.expected, string(test.req.Bytes()))
		})
	}
}

func TestRequest_WriteTo(t *testing.T) {
	req := NewSetRequest().Set("private_key", "00").Set("up", "true")
	expected := req.String()

	t.Run("Partial Writes", func(t *testing.T) {
		w := &chunkWriter{n: 3}
		n, err := req.WriteTo(w)
		require.NoError(t, err)
		assert.EqualValues(t, len(expected), n)
		assert.Equal(t, expected, w.buf.String())
		assert.Greater(t, w.calls, 1)
	})

	t.Run("Write Error", func(t *testing.T) {
		_, err := req.WriteTo(failWriter{})
		assert.EqualError(t, err, "broken pipe")
	})

	t.Run("No Progress", func(t *testing.T) {
		_, err := req.WriteTo(zeroWriter{})
		assert.Error(t, err)
	})
}
