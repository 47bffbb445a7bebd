package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is one bill document: a filesystem path or an in-memory buffer.
type Source struct {
	path string
	name string
	data []byte
}

// FromPath returns a Source backed by a file.
func FromPath(path string) Source {
	return Source{path: path, name: filepath.Base(path)}
}

// FromBytes returns a Source backed by data; name identifies it in reports.
func FromBytes(name string, data []byte) Source {
	return Source{name: name, data: data}
}

// ID identifies the document in results and batch reports.
func (s Source) ID() string { return s.name }

// Path is the backing file, empty for in-memory sources.
func (s Source) Path() string { return s.path }

// ReaderAt opens random access over the document. The returned closer must be called.
func (s Source) ReaderAt() (io.ReaderAt, int64, io.Closer, error) {
	if s.path == "" {
		return bytes.NewReader(s.data), int64(len(s.data)), nopCloser{}, nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, 0, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, nil, err
	}
	return f, fi.Size(), f, nil
}

// Materialize returns a filesystem path for backends that only accept files.
// Buffers are spilled to a temp file under dir ("" = os.TempDir()); cleanup
// removes it and is always safe to call.
func (s Source) Materialize(dir string) (string, func(), error) {
	noop := func() {}
	if s.path != "" {
		fi, err := os.Stat(s.path)
		if err != nil {
			return "", noop, err
		}
		if fi.IsDir() {
			return "", noop, fmt.Errorf("%s is a directory", s.path)
		}
		return s.path, noop, nil
	}
	f, err := os.CreateTemp(dir, "bill-*.pdf")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(s.data); err != nil {
		_ = f.Close()
		cleanup()
		return "", noop, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, err
	}
	return f.Name(), cleanup, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
