package parser

import (
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// NewUTF8Reader wraps body with a decoder that converts its content to UTF-8.
//
// With an empty encoding name the charset is detected from the byte order
// mark, falling back to a UTF-8 validity heuristic (windows-1252 otherwise).
// A non-empty name (e.g. "latin1", "windows-1252", "utf-16le") is resolved
// through the WHATWG encoding index and applied as-is.
func NewUTF8Reader(body io.Reader, encoding string) (io.Reader, error) {
	if encoding == "" {
		return charset.NewReader(body, "text/csv")
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}
	return transform.NewReader(body, enc.NewDecoder()), nil
}
