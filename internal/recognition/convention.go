package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

const maxResponseBytes = 1 << 20

// Request is what a convention sends: raw image bytes plus metadata.
type Request struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Convention is one wire format for calling the recognition service.
// Attempt must not retry internally.
type Convention interface {
	Name() string
	Attempt(ctx context.Context, t Target, req Request) (*Response, error)
}

// Target bundles what every convention needs to reach the service.
type Target struct {
	HTTPClient  *http.Client
	URL         string
	APIKey      string
	BearerToken string
}

// DefaultConventions returns the fallback order: multipart "image",
// multipart "file", then JSON base64.
func DefaultConventions() []Convention {
	return []Convention{
		MultipartConvention{Field: "image"},
		MultipartConvention{Field: "file"},
		JSONConvention{Field: "image"},
	}
}

type MultipartConvention struct {
	Field string
}

func (c MultipartConvention) Name() string {
	return "multipart:" + c.Field
}

func (c MultipartConvention) Attempt(ctx context.Context, t Target, req Request) (*Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filename := req.Filename
	if filename == "" {
		filename = "capture.jpg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, c.Field, filename))
	h.Set("Content-Type", req.MIMEType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("could not create form part: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("could not write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	return send(ctx, t, writer.FormDataContentType(), &body)
}

type JSONConvention struct {
	Field string
}

func (c JSONConvention) Name() string {
	return "json:" + c.Field
}

func (c JSONConvention) Attempt(ctx context.Context, t Target, req Request) (*Response, error) {
	payload, err := json.Marshal(map[string]string{
		c.Field:     base64.StdEncoding.EncodeToString(req.Data),
		"mime_type": req.MIMEType,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	return send(ctx, t, "application/json", bytes.NewReader(payload))
}

func send(ctx context.Context, t Target, contentType string, body io.Reader) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if t.APIKey != "" {
		httpReq.Header.Set("X-API-Key", t.APIKey)
	}
	if t.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.BearerToken)
	}

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	return parseResponse(respBody)
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recognition service responded %d: %s", e.StatusCode, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
