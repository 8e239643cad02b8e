package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"face-attendance/internal/config"
	"face-attendance/internal/intake"
	"face-attendance/internal/recognition"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRecognizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Send an image to the recognition service and print the outcome",
		Long: `Send an image to the recognition service using the same fallback chain
as the attendance API (multipart "image", multipart "file", JSON base64) and
print the interpreted outcome. Nothing is written to the ledger.

Examples:
  attendancectl recognize --image ./somchai.jpg
  attendancectl recognize --image ./somchai.jpg --json`,
		Args: cobra.NoArgs,
		RunE: runRecognize,
	}
	cmd.Flags().String("image", "", "Path to the captured image")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

type recognizeOutput struct {
	Outcome    recognition.Kind `json:"outcome"`
	PersonName string           `json:"person_name,omitempty"`
	Confidence float64          `json:"confidence"`
	Convention string           `json:"convention,omitempty"`
	Attempts   []attemptOutput  `json:"attempts"`
}

type attemptOutput struct {
	Convention string `json:"convention"`
	Error      string `json:"error,omitempty"`
}

func runRecognize(cmd *cobra.Command, args []string) error {
	path := mustGetString(cmd, "image")
	jsonOutput := mustGetBool(cmd, "json")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, mimeType, err := readImage(path)
	if err != nil {
		return err
	}
	img, err := intake.FromBytes(data, mimeType, filepath.Base(path), cfg.Attendance.MaxImageBytes)
	if err != nil {
		return err
	}
	defer img.Release()

	client := recognition.NewClient(recognition.Config{
		BaseURL:     cfg.Recognition.BaseURL,
		Path:        cfg.Recognition.Path,
		Timeout:     cfg.Recognition.Timeout,
		APIKey:      cfg.Recognition.APIKey,
		BearerToken: cfg.Recognition.BearerToken,
		Threshold:   cfg.Recognition.Threshold,
	}, recognition.WithLogger(zap.L()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := recognizeImage(ctx, client, img)
	if err := printRecognition(cmd, out, jsonOutput); err != nil {
		return err
	}
	if out.Kind == recognition.KindServiceUnavailable {
		return fmt.Errorf("recognition service unavailable")
	}
	return nil
}

func recognizeImage(ctx context.Context, r recognition.Recognizer, img intake.CapturedImage) recognition.Outcome {
	return r.Recognize(ctx, recognition.Request{
		Data:     img.Data,
		MIMEType: img.MIMEType,
		Filename: img.Filename,
	})
}

func printRecognition(cmd *cobra.Command, out recognition.Outcome, jsonOutput bool) error {
	w := cmd.OutOrStdout()
	if !jsonOutput {
		fmt.Fprintln(w, out.String())
		for _, a := range out.Attempts {
			if a.Err != nil {
				fmt.Fprintf(w, "  %s: %v\n", a.Convention, a.Err)
			}
		}
		return nil
	}

	payload := recognizeOutput{
		Outcome:    out.Kind,
		PersonName: out.PersonName,
		Confidence: out.Confidence,
		Convention: out.Convention,
		Attempts:   make([]attemptOutput, 0, len(out.Attempts)),
	}
	for _, a := range out.Attempts {
		ao := attemptOutput{Convention: a.Convention}
		if a.Err != nil {
			ao.Error = a.Err.Error()
		}
		payload.Attempts = append(payload.Attempts, ao)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
