// Package flushio provides a flushable io.Writer, used as the diagnostic
// sink that PRINT_NAME and trace logging write through: buffered when
// wrapping a raw file descriptor, a no-op flush when wrapping an in-memory
// buffer that a test already holds a reference to.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

var discardWriteFlusher WriteFlusher = nopFlusher{io.Discard}

// New wraps w so it can be flushed: a buffer-like writer (bytes.Buffer,
// strings.Builder, or anything already implementing WriteFlusher) is
// returned unchanged beyond a no-op Flush; anything else is wrapped in a
// bufio.Writer.
func New(w io.Writer) WriteFlusher {
	if w == io.Discard {
		return discardWriteFlusher
	}
	if wf, ok := w.(WriteFlusher); ok {
		return wf
	}
	type buffer interface {
		io.Writer
		Cap() int
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}
	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// Multi combines any number of WriteFlushers into one that writes into and
// flushes all of them; used when tracing is tee'd alongside normal output.
func Multi(wfs ...WriteFlusher) WriteFlusher {
	switch flat := flatten(nil, wfs...); len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return flat
	}
}

type multiWriteFlusher []WriteFlusher

func (wfs multiWriteFlusher) Write(p []byte) (n int, err error) {
	for _, wf := range wfs {
		n, err = wf.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (wfs multiWriteFlusher) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

func flatten(all multiWriteFlusher, some ...WriteFlusher) multiWriteFlusher {
	for _, one := range some {
		if many, ok := one.(multiWriteFlusher); ok {
			all = append(all, many...)
		} else if one != nil {
			all = append(all, one)
		}
	}
	return all
}
