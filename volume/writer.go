package volume

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// Writer streams quantized slabs to a pending file next to the final path.
// The volume only appears at its path after Commit, so a failed or aborted
// conversion never leaves a partial file behind.
type Writer struct {
	path string
	f    *renameio.PendingFile
	n    int64
	buf  []uint8
}

// Create prepares a volume to be written at path, creating parent
// directories as needed.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create volume directory")
	}
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, errors.Wrap(err, "create volume")
	}
	return &Writer{path: path, f: f}, nil
}

// WriteSlab quantizes dist and appends it to the volume.
func (w *Writer) WriteSlab(dist []float32) error {
	if w.f == nil {
		return os.ErrClosed
	}
	if cap(w.buf) < len(dist) {
		w.buf = make([]uint8, len(dist))
	}
	b := w.buf[:len(dist)]
	QuantizeSlice(b, dist)
	n, err := w.f.Write(b)
	w.n += int64(n)
	return errors.Wrap(err, "write volume")
}

// Reset discards all written voxels.
func (w *Writer) Reset() error {
	if w.f == nil {
		return os.ErrClosed
	}
	if err := w.f.Truncate(0); err != nil {
		return errors.Wrap(err, "reset volume")
	}
	if _, err := w.f.Seek(0, 0); err != nil {
		return errors.Wrap(err, "reset volume")
	}
	w.n = 0
	return nil
}

// Len returns the number of voxels written so far.
func (w *Writer) Len() int64 { return w.n }

// Path returns the final path of the volume.
func (w *Writer) Path() string { return w.path }

// Commit flushes the volume and moves it to its final path.
func (w *Writer) Commit() error {
	if w.f == nil {
		return os.ErrClosed
	}
	f := w.f
	w.f = nil
	if err := f.CloseAtomicallyReplace(); err != nil {
		f.Cleanup()
		return errors.Wrap(err, "commit volume")
	}
	return nil
}

// Abort removes the pending file. It is a no-op after Commit.
func (w *Writer) Abort() error {
	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	return f.Cleanup()
}

// Write quantizes a materialized volume and writes it to path.
func Write(path string, dist []float32) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	if err := w.WriteSlab(dist); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}
