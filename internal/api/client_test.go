package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal 1x1 PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

const pdfBytes = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestAsk_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is the total?", req.Question)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"$42","sources":[{"chunk_text":"Total: $42"}],"ocr_text":"INVOICE\nTotal: $42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", 0)
	result, err := client.Ask(context.Background(), "What is the total?")
	require.NoError(t, err)

	assert.Equal(t, "$42", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Total: $42", result.Sources[0].ChunkText)
	assert.Equal(t, "INVOICE\nTotal: $42", result.OCRText)
}

func TestAsk_MissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL, 0).Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, result.Answer)
	assert.Nil(t, result.Sources)
	assert.Empty(t, result.OCRText)
}

func TestAsk_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 0).Ask(context.Background(), "q")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindStatus, apiErr.Kind)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Body)
	assert.Contains(t, err.Error(), "502")
}

func TestAsk_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 0).Ask(context.Background(), "q")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestAsk_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, 0).Ask(context.Background(), "q")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindTransport, apiErr.Kind)
}

func TestAsk_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, 0).Ask(ctx, "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUpload_PNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
		assert.Equal(t, "scan.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"status":"ok","chunks":3}`))
	}))
	defer server.Close()

	path := writeFile(t, "scan.png", pngBytes)

	result, err := NewClient(server.URL, 0).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "scan.png", result.FileName)
	assert.Equal(t, int64(len(pngBytes)), result.Size)
	assert.JSONEq(t, `{"status":"ok","chunks":3}`, string(result.Body))
}

func TestUpload_PDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	path := writeFile(t, "report.pdf", []byte(pdfBytes))

	_, err := NewClient(server.URL, 0).Upload(context.Background(), path)
	require.NoError(t, err)
}

func TestUpload_UnsupportedTypeNeverHitsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	path := writeFile(t, "notes.txt", []byte("just some plain text"))

	_, err := NewClient(server.URL, 0).Upload(context.Background(), path)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindUnsupported, apiErr.Kind)
	assert.Equal(t, int32(0), calls.Load())
}

func TestUpload_MissingFile(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", 0).Upload(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindFile, apiErr.Kind)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestUpload_Directory(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", 0).Upload(context.Background(), t.TempDir())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindFile, apiErr.Kind)
}

func TestUpload_StreamsBody(t *testing.T) {
	large := append([]byte(pdfBytes), bytes.Repeat([]byte("%comment line\n"), 64*1024)...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(-1), r.ContentLength)
		assert.Equal(t, []string{"chunked"}, r.TransferEncoding)

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, large, data)

		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	path := writeFile(t, "big.pdf", large)

	result, err := NewClient(server.URL, 0).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(large)), result.Size)
}

func TestUpload_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	path := writeFile(t, "scan.png", pngBytes)

	_, err := NewClient(server.URL, 0).Upload(context.Background(), path)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindStatus, apiErr.Kind)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "status", KindStatus.String())
	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "unsupported", KindUnsupported.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
