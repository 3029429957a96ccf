package uapi

import (
	"bytes"
	"io"
	"strconv"
)

const (
	OperationSet = "set"
	OperationGet = "get"
)

// Request is an ordered list of key=value lines, terminated by a blank line
// when serialized
type Request struct {
	buf bytes.Buffer
}

// NewSetRequest creates a request starting with `set=1`
func NewSetRequest() *Request {
	return newRequest(OperationSet)
}

// NewGetRequest creates a request starting with `get=1`
func NewGetRequest() *Request {
	return newRequest(OperationGet)
}

func newRequest(op string) *Request {
	r := new(Request)
	r.Set(op, "1")
	return r
}

// Set appends one key=value line
func (r *Request) Set(key, value string) *Request {
	r.buf.WriteString(key)
	r.buf.WriteByte('=')
	r.buf.WriteString(value)
	r.buf.WriteByte('\n')
	return r
}

func (r *Request) SetBool(key string, value bool) *Request {
	return r.Set(key, strconv.FormatBool(value))
}

func (r *Request) SetInt(key string, value int) *Request {
	return r.Set(key, strconv.Itoa(value))
}

// Bytes returns the serialized request including the trailing blank line
func (r *Request) Bytes() []byte {
	data := make([]byte, 0, r.buf.Len()+1)
	data = append(data, r.buf.Bytes()...)
	return append(data, '\n')
}

func (r *Request) String() string {
	return string(r.Bytes())
}

// WriteTo writes the whole request to w, retrying on short writes until all
// bytes are sent or an error occurred
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	return writeFull(w, r.Bytes())
}

func writeFull(w io.Writer, data []byte) (int64, error) {
	var total int64
	for len(data) > 0 {
		n, err := w.Write(data)
		total += int64(n)
		if err != nil {
			return total, err
		}

		if n == 0 {
			return total, io.ErrShortWrite
		}

		data = data[n:]
	}

	return total, nil
}
