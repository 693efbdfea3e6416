// Package compressor provides the compression capability used to
// publish per-architecture indices in the encodings apt clients
// expect. Implementations are native; no external processes.
package compressor

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Compressor writes a compressed sibling of src and returns its path.
type Compressor interface {
	Compress(src string) (string, error)
}

// XZ emits "<src>.xz".
type XZ struct{}

func (XZ) Compress(src string) (string, error) {
	dst := src + ".xz"
	err := compressFile(src, dst, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// Gzip emits "<src>.gz".
type Gzip struct{}

func (Gzip) Compress(src string) (string, error) {
	dst := src + ".gz"
	err := compressFile(src, dst, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

func compressFile(src, dst string, newWriter func(io.Writer) (io.WriteCloser, error)) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", src, err)
	}

	cw, err := newWriter(out)
	if err != nil {
		out.Close()
		return fmt.Errorf("compressing %s: %w", src, err)
	}
	if _, err := io.Copy(cw, in); err != nil {
		cw.Close()
		out.Close()
		return fmt.Errorf("compressing %s: %w", src, err)
	}
	if err := cw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("compressing %s: %w", src, err)
	}
	return out.Close()
}
