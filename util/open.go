// Package util provides helpers for the ribdump command.
package util

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicBzip2 = []byte("BZh")
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// readCloser closes the decompressor, then the file
type readCloser struct {
	io.Reader
	close []func() error
}

func (rc *readCloser) Close() (err error) {
	for _, c := range rc.close {
		if cerr := c(); err == nil {
			err = cerr
		}
	}
	return err
}

// OpenPath opens the file at path for reading, transparently decompressing
// .gz, .bz2 and .zst files. Files with other extensions are checked for
// compression magic bytes too. Use "-" for stdin.
func OpenPath(path string) (io.ReadCloser, error) {
	var fh *os.File
	if path == "-" {
		fh = os.Stdin
	} else {
		var err error
		if fh, err = os.Open(path); err != nil {
			return nil, err
		}
	}

	rc, err := Decompress(fh, filepath.Ext(path))
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &readCloser{Reader: rc, close: []func() error{rc.Close, fh.Close}}, nil
}

// Decompress wraps rd in a decompressor chosen by ext (eg. ".gz"),
// or by the magic bytes at the start of rd if ext is not known.
// Closing the result does not close rd.
func Decompress(rd io.Reader, ext string) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(rd, 64*1024)

	if ext != ".gz" && ext != ".bz2" && ext != ".zst" {
		magic, _ := br.Peek(4)
		switch {
		case bytes.HasPrefix(magic, magicGzip):
			ext = ".gz"
		case bytes.HasPrefix(magic, magicBzip2):
			ext = ".bz2"
		case bytes.HasPrefix(magic, magicZstd):
			ext = ".zst"
		}
	}

	switch ext {
	case ".bz2":
		return &readCloser{Reader: bzip2.NewReader(br)}, nil
	case ".gz":
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: zr, close: []func() error{zr.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: zr, close: []func() error{func() error { zr.Close(); return nil }}}, nil
	default:
		return &readCloser{Reader: br}, nil
	}
}
