package client

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func encodeBody(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		w = zw
	case "deflate":
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			t.Fatalf("flate writer: %v", err)
		}
		w = fw
	default:
		return data
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("encode %s: %v", encoding, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", encoding, err)
	}
	return buf.Bytes()
}

func TestCompressionTransport_Decodes(t *testing.T) {
	t.Parallel()
	csv := []byte("id,title\ntm1,Alpha\n")
	tests := []struct {
		name   string
		header string
		encode string
	}{
		{name: "gzip", header: "gzip", encode: "gzip"},
		{name: "brotli", header: "br", encode: "br"},
		{name: "zstd", header: "zstd", encode: "zstd"},
		{name: "deflate", header: "deflate", encode: "deflate"},
		{name: "comma list", header: "identity, gzip", encode: "gzip"},
		{name: "whitespace", header: " gzip ", encode: "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept-Encoding"); got != acceptEncoding {
					t.Errorf("Expected Accept-Encoding %q, got %q", acceptEncoding, got)
				}
				w.Header().Set("Content-Encoding", tt.header)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(encodeBody(t, tt.encode, csv))
			}))
			defer server.Close()

			httpClient := &http.Client{Transport: newCompressionTransport(nil)}
			resp, err := httpClient.Get(server.URL)
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read response body: %v", err)
			}
			if !bytes.Equal(body, csv) {
				t.Errorf("Expected body %q, got %q", csv, body)
			}
			if resp.Header.Get("Content-Encoding") != "" {
				t.Errorf("Expected Content-Encoding to be removed, got %q", resp.Header.Get("Content-Encoding"))
			}
		})
	}
}

func TestCompressionTransport_PreserveExistingAcceptEncoding(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "identity" {
			t.Errorf("Expected Accept-Encoding 'identity', got %q", r.Header.Get("Accept-Encoding"))
		}
		_, _ = w.Write([]byte("plain"))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if req.Header.Get("Accept-Encoding") != "identity" {
		t.Error("Expected caller request headers to stay untouched")
	}
}

func TestCompressionTransport_UnknownEncoding(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		_, _ = w.Write([]byte("raw"))
	}))
	defer server.Close()

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "raw" {
		t.Errorf("Expected body to pass through, got %q", body)
	}
	if resp.Header.Get("Content-Encoding") != "compress" {
		t.Errorf("Expected Content-Encoding to be kept for unknown encodings, got %q", resp.Header.Get("Content-Encoding"))
	}
}

func TestCompressionTransport_NoBody(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}
}

func TestParseContentEncoding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"identity", "identity", ""},
		{"simple gzip", "gzip", "gzip"},
		{"simple zstd", "zstd", "zstd"},
		{"with both whitespace", " gzip ", "gzip"},
		{"comma list - identity, gzip", "identity, gzip", "gzip"},
		{"comma list - gzip, br", "gzip, br", "br"},
		{"mixed case", "GzIp", "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if result := parseContentEncoding(tt.header); result != tt.expected {
				t.Errorf("parseContentEncoding(%q) = %q, expected %q", tt.header, result, tt.expected)
			}
		})
	}
}
