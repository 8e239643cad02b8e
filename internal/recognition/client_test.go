package recognition_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"face-attendance/internal/recognition"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeService answers per convention; the key is the multipart field name
// ("image", "file") or "json".
type fakeService struct {
	mu       sync.Mutex
	calls    map[string]int
	headers  []http.Header
	payloads map[string][]byte
	reply    map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeService() *fakeService {
	return &fakeService{
		calls:    map[string]int{},
		payloads: map[string][]byte{},
		reply:    map[string]func(w http.ResponseWriter, r *http.Request){},
	}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, payload := f.decode(r)

	f.mu.Lock()
	f.calls[key]++
	f.headers = append(f.headers, r.Header.Clone())
	f.payloads[key] = payload
	handler := f.reply[key]
	f.mu.Unlock()

	if handler == nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No image part"}`))
		return
	}
	handler(w, r)
}

func (f *fakeService) decode(r *http.Request) (string, []byte) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		data, _ := base64.StdEncoding.DecodeString(body["image"])
		return "json", data
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return "invalid", nil
	}
	defer r.MultipartForm.RemoveAll()
	for field, files := range r.MultipartForm.File {
		fh, _ := files[0].Open()
		data, _ := io.ReadAll(fh)
		fh.Close()
		return field, data
	}
	return "empty", nil
}

func jsonReply(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newClient(url string, cfg recognition.Config) *recognition.Client {
	cfg.BaseURL = url
	if cfg.Path == "" {
		cfg.Path = "/recognize"
	}
	return recognition.NewClient(cfg, recognition.WithLogger(zap.NewNop()))
}

var image = recognition.Request{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg", Filename: "face.jpg"}

func TestClient_PrimaryConventionSucceeds(t *testing.T) {
	svc := newFakeService()
	svc.reply["image"] = jsonReply(http.StatusOK, `{"recognized":true,"name":"Somchai","confidence":0.95}`)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	out := newClient(srv.URL, recognition.Config{}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindRecognized, out.Kind)
	assert.Equal(t, "Somchai", out.PersonName)
	assert.Equal(t, 0.95, out.Confidence)
	assert.Equal(t, "multipart:image", out.Convention)
	assert.Equal(t, 1, svc.calls["image"])
	assert.Equal(t, 0, svc.calls["file"])
	assert.Equal(t, 0, svc.calls["json"])
	assert.Equal(t, []byte("jpeg-bytes"), svc.payloads["image"])
}

func TestClient_FallsBackToJSON(t *testing.T) {
	svc := newFakeService()
	svc.reply["image"] = jsonReply(http.StatusInternalServerError, `boom`)
	svc.reply["file"] = jsonReply(http.StatusBadGateway, `bad gateway`)
	svc.reply["json"] = jsonReply(http.StatusOK, `{"recognized":true,"name":"Somchai","confidence":0.9}`)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	out := newClient(srv.URL, recognition.Config{}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindRecognized, out.Kind)
	assert.Equal(t, "json:image", out.Convention)
	assert.Len(t, out.Attempts, 3)
	assert.Error(t, out.Attempts[0].Err)
	assert.Error(t, out.Attempts[1].Err)
	assert.NoError(t, out.Attempts[2].Err)
	assert.Equal(t, 1, svc.calls["image"])
	assert.Equal(t, 1, svc.calls["file"])
	assert.Equal(t, 1, svc.calls["json"])
	assert.Equal(t, []byte("jpeg-bytes"), svc.payloads["json"])
}

func TestClient_ThresholdIsStrict(t *testing.T) {
	svc := newFakeService()
	svc.reply["image"] = jsonReply(http.StatusOK, `{"recognized":true,"name":"Somchai","confidence":0.7}`)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	out := newClient(srv.URL, recognition.Config{Threshold: 0.7}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindNotRecognized, out.Kind)
	assert.Equal(t, 0.7, out.Confidence)
	assert.Equal(t, 0, svc.calls["file"], "a well-formed answer must stop the chain")
}

func TestClient_AllConventionsFail(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(svc)
	defer srv.Close()

	out := newClient(srv.URL, recognition.Config{}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindServiceUnavailable, out.Kind)
	assert.Len(t, out.Attempts, 3)
	assert.Error(t, out.Cause)
	assert.Equal(t, 1, svc.calls["image"])
	assert.Equal(t, 1, svc.calls["file"])
	assert.Equal(t, 1, svc.calls["json"])
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := newClient(url, recognition.Config{Timeout: time.Second}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindServiceUnavailable, out.Kind)
	assert.Len(t, out.Attempts, 3)
}

func TestClient_TimeoutAdvancesToNextConvention(t *testing.T) {
	svc := newFakeService()
	svc.reply["image"] = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
	svc.reply["file"] = jsonReply(http.StatusOK, `{"recognized":true,"name":"Somchai","confidence":0.88}`)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	start := time.Now()
	out := newClient(srv.URL, recognition.Config{Timeout: 100 * time.Millisecond}).Recognize(context.Background(), image)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, recognition.KindRecognized, out.Kind)
	assert.Equal(t, "multipart:file", out.Convention)
}

func TestClient_MalformedResponseAdvances(t *testing.T) {
	svc := newFakeService()
	svc.reply["image"] = jsonReply(http.StatusOK, `not json`)
	svc.reply["file"] = jsonReply(http.StatusOK, `{"status":"ok"}`)
	svc.reply["json"] = jsonReply(http.StatusOK, `{"recognized":true}`)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	out := newClient(srv.URL, recognition.Config{}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindServiceUnavailable, out.Kind)
	assert.ErrorIs(t, out.Cause, recognition.ErrMalformedResponse)
}

func TestClient_SendsCredentials(t *testing.T) {
	svc := newFakeService()
	svc.reply["image"] = jsonReply(http.StatusOK, `{"recognized":false,"confidence":0.1}`)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	out := newClient(srv.URL, recognition.Config{APIKey: "k-123", BearerToken: "tok"}).Recognize(context.Background(), image)

	assert.Equal(t, recognition.KindNotRecognized, out.Kind)
	assert.Len(t, svc.headers, 1)
	assert.Equal(t, "k-123", svc.headers[0].Get("X-API-Key"))
	assert.Equal(t, "Bearer tok", svc.headers[0].Get("Authorization"))
}

func TestClient_CancelledContextStops(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(svc)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newClient(srv.URL, recognition.Config{}).Recognize(ctx, image)

	assert.Equal(t, recognition.KindServiceUnavailable, out.Kind)
	assert.Len(t, out.Attempts, 1)
	assert.Equal(t, 0, svc.calls["image"])
}
