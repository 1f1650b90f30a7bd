package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// source is an opened weather file, decompressed on the fly by extension.
type source struct {
	io.Reader
	closers []func() error
}

func (s *source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSource opens path and wraps it with a decompressor for .gz, .zst, and .xz files.
func openSource(path string) (*source, error) {
	f, err := os.Open(path) //nolint:gosec // path is the operator-supplied weather file
	if err != nil {
		return nil, err
	}
	src := &source{Reader: f, closers: []func() error{f.Close}}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		src.Reader = zr
		src.closers = append(src.closers, zr.Close)
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		src.Reader = zr
		src.closers = append(src.closers, func() error { zr.Close(); return nil })
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open xz stream: %w", err)
		}
		src.Reader = xr
	}
	return src, nil
}
