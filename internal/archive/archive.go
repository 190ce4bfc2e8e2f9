// Package archive reads and writes record exports, compressed according to
// the file name suffix (.zst, .gz or .bz2; anything else is plain).
package archive

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// MaxSize caps how much decompressed data Read accepts.
const MaxSize = 64 << 20

// IsURL reports whether name should be downloaded rather than opened.
func IsURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// Read loads name, which may be "-" for stdin, a local path or an http(s)
// URL, and decompresses it by suffix.
func Read(name string) ([]byte, error) {
	var src io.Reader
	switch {
	case name == "-":
		src = os.Stdin
	case IsURL(name):
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(name) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download %s: HTTP %d", name, resp.StatusCode)
		}
		src = resp.Body
	default:
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		defer f.Close()
		src = f
	}
	return Decode(name, src)
}

// Decode reads all of r, decompressing it according to name's suffix.
func Decode(name string, r io.Reader) ([]byte, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(name, ".bz2"):
		r = bzip2.NewReader(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("read %s: larger than %d bytes", name, MaxSize)
	}
	return data, nil
}

// Encode writes data to w, compressed according to name's suffix.
// Only .zst and .gz are supported for writing.
func Encode(name string, w io.Writer, data []byte) error {
	var (
		dst io.WriteCloser
		err error
	)
	switch {
	case strings.HasSuffix(name, ".zst"):
		dst, err = zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
	case strings.HasSuffix(name, ".gz"):
		dst = gzip.NewWriter(w)
	case strings.HasSuffix(name, ".bz2"):
		return fmt.Errorf("write %s: bzip2 output is not supported", name)
	default:
		_, err := w.Write(data)
		return err
	}
	if _, err := dst.Write(data); err != nil {
		dst.Close()
		return fmt.Errorf("compress %s: %w", name, err)
	}
	return dst.Close()
}

// Write encodes data into the file name.
func Write(name string, data []byte) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := Encode(name, f, data); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	return f.Close()
}
