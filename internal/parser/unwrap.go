package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/config"
)

// maxUnwrapDepth is the number of wrapper layers Unwrap removes, so
// titles.csv.gz inside a zip uses two of them.
const maxUnwrapDepth = 4

// Unwrap strips compression and archive layers identified by the file
// extension of name. It returns the innermost entry name and its content.
// Archives yield their first tabular entry (.csv, .tsv, .txt or .xlsx).
func Unwrap(name string, data []byte, maxBytes int64) (string, []byte, error) {
	logger := config.GetLogger()

	for depth := 0; isWrapper(name); depth++ {
		if depth == maxUnwrapDepth {
			return "", nil, &apperrors.ErrUnsupportedFormat{Name: name, Reason: "too many nested archive layers"}
		}

		inner, out, err := unwrapLayer(name, data, maxBytes)
		if err != nil {
			return "", nil, fmt.Errorf("failed to unwrap %s: %w", name, err)
		}

		logger.Debug().
			Str("source", name).
			Str("entry", inner).
			Int("size", len(out)).
			Msg("Unwrapped source layer")
		name, data = inner, out
	}

	return name, data, nil
}

func isWrapper(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip", ".zst", ".zstd", ".br", ".zip", ".rar":
		return true
	}
	return false
}

// unwrapLayer removes the outermost layer of a name accepted by isWrapper.
func unwrapLayer(name string, data []byte, maxBytes int64) (string, []byte, error) {
	trimmed := strings.TrimSuffix(name, path.Ext(name))

	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		out, err := gunzip(data, maxBytes)
		return trimmed, out, err
	case ".zst", ".zstd":
		out, err := unzstd(data, maxBytes)
		return trimmed, out, err
	case ".br":
		out, err := readLimited(brotli.NewReader(bytes.NewReader(data)), maxBytes)
		return trimmed, out, err
	case ".zip":
		return firstZipEntry(data, maxBytes)
	default:
		return firstRarEntry(data, maxBytes)
	}
}

// ErrTooLarge is returned when a decompressed source exceeds the byte limit.
var ErrTooLarge = errors.New("decompressed source exceeds size limit")

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func gunzip(data []byte, maxBytes int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readLimited(zr, maxBytes)
}

func unzstd(data []byte, maxBytes int64) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return readLimited(dec, maxBytes)
}

// isTabularEntry reports whether an archive entry looks like a table.
func isTabularEntry(name string) bool {
	base := path.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(name, "__MACOSX/") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".tsv", ".txt", ".xlsx", ".gz", ".zst", ".br":
		return true
	}
	return false
}

func firstZipEntry(data []byte, maxBytes int64) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isTabularEntry(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		content, err := readLimited(rc, maxBytes)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return f.Name, content, nil
	}

	return "", nil, &apperrors.ErrUnsupportedFormat{Name: "zip archive", Reason: "no tabular entry found"}
}

func firstRarEntry(data []byte, maxBytes int64) (string, []byte, error) {
	rr, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}

	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}
		if hdr.IsDir || !isTabularEntry(hdr.Name) {
			continue
		}
		content, err := readLimited(rr, maxBytes)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", hdr.Name, err)
		}
		return hdr.Name, content, nil
	}

	return "", nil, &apperrors.ErrUnsupportedFormat{Name: "rar archive", Reason: "no tabular entry found"}
}
