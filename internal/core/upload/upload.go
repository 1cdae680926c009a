// Package upload turns user files into data URLs the analysis can attach.
package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/agenthands/vynda/internal/core/model"
)

var (
	ErrEmpty           = errors.New("upload: empty file")
	ErrTooLarge        = errors.New("upload: file too large")
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

// Supported lists the MIME types the analysis providers accept inline.
var Supported = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/heic",
	"image/heif",
	"text/plain",
}

// Read loads a multipart file. maxBytes <= 0 disables the size check.
func Read(fh *multipart.FileHeader, label model.FileLabel, maxBytes int64) (model.UploadedFile, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return model.UploadedFile{}, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, fh.Filename, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}

	return FromBytes(fh.Filename, data, label, maxBytes)
}

// FromBytes sniffs the content type and encodes data as a data URL.
func FromBytes(name string, data []byte, label model.FileLabel, maxBytes int64) (model.UploadedFile, error) {
	if len(data) == 0 {
		return model.UploadedFile{}, fmt.Errorf("%w: %s", ErrEmpty, name)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return model.UploadedFile{}, fmt.Errorf("%w: %s", ErrTooLarge, name)
	}

	mimeType := baseType(mimetype.Detect(data).String())
	if !mimetype.EqualsAny(mimeType, Supported...) {
		return model.UploadedFile{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, name, mimeType)
	}

	return model.UploadedFile{
		Name:     name,
		MIMEType: mimeType,
		Label:    label,
		DataURL:  fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
	}, nil
}

func baseType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.TrimSpace(base)
}
