// Package intake validates captured kiosk images before any downstream call.
// It never decodes pixel data.
package intake

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	intakeerrors "face-attendance/internal/intake/errors"
)

const DefaultMaxBytes int64 = 5 << 20

// CapturedImage is request scoped. Call Release once the pipeline is done.
type CapturedImage struct {
	Data     []byte
	MIMEType string
	Size     int64
	Filename string
}

// Release drops the buffer so it can be collected even if the struct is
// still referenced (e.g. by a result being logged).
func (img *CapturedImage) Release() {
	img.Data = nil
}

// FromFileHeader validates a multipart attachment and reads it into memory.
// The declared size is checked before the file is opened and the read itself
// is bounded, so a lying header cannot push more than maxBytes through.
func FromFileHeader(fh *multipart.FileHeader, maxBytes int64) (CapturedImage, error) {
	if fh == nil {
		return CapturedImage{}, intakeerrors.ErrImageMissing
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	mimeType := fh.Header.Get("Content-Type")
	if err := checkDeclared(fh.Size, mimeType, maxBytes); err != nil {
		return CapturedImage{}, err
	}

	f, err := fh.Open()
	if err != nil {
		return CapturedImage{}, intakeerrors.ErrImageUnreadable.WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return CapturedImage{}, intakeerrors.ErrImageUnreadable.WithCause(err)
	}

	return FromBytes(data, mimeType, fh.Filename, maxBytes)
}

// FromBytes validates an already-buffered payload.
func FromBytes(data []byte, mimeType, filename string, maxBytes int64) (CapturedImage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := checkDeclared(int64(len(data)), mimeType, maxBytes); err != nil {
		return CapturedImage{}, err
	}
	mediaType, _, _ := mime.ParseMediaType(mimeType)

	return CapturedImage{
		Data:     data,
		MIMEType: mediaType,
		Size:     int64(len(data)),
		Filename: filename,
	}, nil
}

func checkDeclared(size int64, mimeType string, maxBytes int64) error {
	if size <= 0 {
		return intakeerrors.ErrImageMissing
	}
	if size > maxBytes {
		return intakeerrors.ErrImageTooLarge.WithDetails(map[string]any{
			"max_bytes": maxBytes,
			"size":      size,
		})
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		return intakeerrors.ErrImageType.WithDetails(map[string]any{
			"content_type": mimeType,
		})
	}
	return nil
}

// Describe is used in logs; it never includes the payload.
func (img CapturedImage) Describe() string {
	return fmt.Sprintf("%s (%s, %d bytes)", img.Filename, img.MIMEType, img.Size)
}
