package stream

import (
	"bufio"
	"io"
	"os"
	"sync"
)

type OutputStream interface {
	Write([]byte) (int, error)
	Flush() error
	Close() error
}

type InputStream interface {
	Read(p []byte) (n int, err error)
	Close() error
}

// NewOutputStream opens a buffered file-backed output stream.
// The path "-" writes to stdout.
func NewOutputStream(path string) (OutputStream, error) {
	out := &fout{path: path}
	if err := out.reset(); err != nil {
		return nil, err
	}
	return out, nil
}

type fout struct {
	path  string
	w     io.WriteCloser
	buf   *bufio.Writer
	mutex sync.Mutex
}

func (out *fout) reset() error {
	out.mutex.Lock()
	defer out.mutex.Unlock()

	if out.path == "-" {
		out.w = os.Stdout
	} else {
		var err error
		out.w, err = os.OpenFile(out.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
	}
	out.buf = bufio.NewWriter(out.w)
	return nil
}

func (out *fout) Write(p []byte) (int, error) {
	out.mutex.Lock()
	defer out.mutex.Unlock()
	if out.buf == nil {
		return 0, io.EOF
	}
	return out.buf.Write(p)
}

func (out *fout) Flush() error {
	out.mutex.Lock()
	defer out.mutex.Unlock()
	if out.buf == nil {
		return nil
	}
	return out.buf.Flush()
}

func (out *fout) Close() error {
	out.mutex.Lock()
	defer out.mutex.Unlock()

	if out.buf != nil {
		if err := out.buf.Flush(); err != nil {
			return err
		}
		out.buf = nil
	}
	if out.w != nil && out.path != "-" {
		if err := out.w.Close(); err != nil {
			return err
		}
		out.w = nil
	}
	return nil
}

type WriterOutputStream struct {
	Writer io.Writer
}

func (out *WriterOutputStream) Write(buf []byte) (int, error) {
	return out.Writer.Write(buf)
}

func (out *WriterOutputStream) Flush() error {
	return nil
}

func (out *WriterOutputStream) Close() error {
	if wc, ok := out.Writer.(io.Closer); ok {
		return wc.Close()
	}
	return nil
}
