package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const maxErrorBody = 4096

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL. A zero timeout
// leaves requests unbounded except by the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ask(ctx context.Context, question string) (*AnswerResult, error) {
	body, err := json.Marshal(AskRequest{Question: question})
	if err != nil {
		return nil, &Error{Op: "ask", Kind: KindDecode, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "ask", Kind: KindTransport, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req, "ask")
	if err != nil {
		return nil, err
	}

	var result AnswerResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &Error{Op: "ask", Kind: KindDecode, Cause: err}
	}

	return &result, nil
}

// Upload streams a PDF or image file to the service. Other content types
// are rejected before any request is made.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "upload", Kind: KindFile, Cause: err}
	}

	info, mtype, err := sniff(f, path)
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, err
	}

	pr, pw := io.Pipe()
	defer pr.Close() //nolint:errcheck
	mw := multipart.NewWriter(pw)

	// the writer owns f from here; it stops once the request body is closed
	go func() {
		defer f.Close() //nolint:errcheck
		_ = pw.CloseWithError(writeFilePart(mw, f, filepath.Base(path), mtype.String()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		return nil, &Error{Op: "upload", Kind: KindTransport, Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.do(req, "upload")
	if err != nil {
		return nil, err
	}

	if !json.Valid(data) {
		return nil, &Error{Op: "upload", Kind: KindDecode, Cause: fmt.Errorf("response is not JSON")}
	}

	return &UploadResult{
		FileName: filepath.Base(path),
		Size:     info.Size(),
		Body:     json.RawMessage(data),
	}, nil
}

// sniff checks that f is a regular file of a supported type and rewinds it.
func sniff(f *os.File, path string) (os.FileInfo, *mimetype.MIME, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, nil, &Error{Op: "upload", Kind: KindFile, Cause: err}
	}
	if info.IsDir() {
		return nil, nil, &Error{Op: "upload", Kind: KindFile, Cause: fmt.Errorf("%s is a directory", path)}
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, nil, &Error{Op: "upload", Kind: KindFile, Cause: err}
	}
	if !IsSupportedType(mtype) {
		return nil, nil, &Error{Op: "upload", Kind: KindUnsupported, Cause: fmt.Errorf("unsupported content type %s", mtype.String())}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, &Error{Op: "upload", Kind: KindFile, Cause: err}
	}
	return info, mtype, nil
}

func writeFilePart(mw *multipart.Writer, r io.Reader, name, contentType string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Op:         op,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Cause: err}
	}

	return data, nil
}

// IsSupportedType reports whether a sniffed type can be sent to /upload.
func IsSupportedType(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("application/pdf") || strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
