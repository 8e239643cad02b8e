package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"face-attendance/internal/middleware"

	"github.com/spf13/cobra"
)

const recordPath = "/api/v1/attendances/record"

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Post an image to the attendance record endpoint",
		Long: `Post an image to a running attendance API as a kiosk would and print the
response envelope.

Examples:
  attendancectl record --image ./somchai.jpg --url http://localhost:3000
  attendancectl record --image ./somchai.jpg --url http://localhost:3000 --kiosk lobby-1 --idempotency-key 7f1c`,
		Args: cobra.NoArgs,
		RunE: runRecord,
	}
	cmd.Flags().String("image", "", "Path to the captured image")
	cmd.Flags().String("url", "http://localhost:3000", "Base URL of the attendance API")
	cmd.Flags().String("kiosk", "", "Kiosk id sent as "+middleware.HeaderKioskID)
	cmd.Flags().String("idempotency-key", "", middleware.HeaderIdempotencyKey+" header value")
	cmd.Flags().Duration("timeout", 30*time.Second, "Request timeout")
	return cmd
}

type recordRequest struct {
	BaseURL        string
	Filename       string
	MIMEType       string
	Data           []byte
	KioskID        string
	IdempotencyKey string
}

type recordResponse struct {
	StatusCode int
	Body       []byte
}

func runRecord(cmd *cobra.Command, args []string) error {
	path := mustGetString(cmd, "image")
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	data, mimeType, err := readImage(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := postRecord(ctx, http.DefaultClient, recordRequest{
		BaseURL:        mustGetString(cmd, "url"),
		Filename:       filepath.Base(path),
		MIMEType:       mimeType,
		Data:           data,
		KioskID:        mustGetString(cmd, "kiosk"),
		IdempotencyKey: mustGetString(cmd, "idempotency-key"),
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "HTTP %d\n", resp.StatusCode)
	var pretty bytes.Buffer
	if json.Indent(&pretty, resp.Body, "", "  ") == nil {
		fmt.Fprintln(w, pretty.String())
	} else {
		fmt.Fprintln(w, string(resp.Body))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("record failed with status %d", resp.StatusCode)
	}
	return nil
}

func postRecord(ctx context.Context, hc *http.Client, req recordRequest) (*recordResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, req.Filename))
	h.Set("Content-Type", req.MIMEType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	url := strings.TrimRight(req.BaseURL, "/") + recordPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if req.KioskID != "" {
		httpReq.Header.Set(middleware.HeaderKioskID, req.KioskID)
	}
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(middleware.HeaderIdempotencyKey, req.IdempotencyKey)
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &recordResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}
