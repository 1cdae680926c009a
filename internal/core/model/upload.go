package model

import (
	"encoding/base64"
	"strings"
)

type FileLabel string

const (
	LabelDenialLetter FileLabel = "DENIAL_LETTER"
	LabelPolicyDoc    FileLabel = "POLICY_DOC"
)

// UploadedFile carries a user file as a data URL.
type UploadedFile struct {
	Name     string    `json:"name"`
	MIMEType string    `json:"mime_type"`
	Label    FileLabel `json:"label"`
	DataURL  string    `json:"data_url"`
}

// Payload decodes the base64 part of the data URL. It reports false when the
// URL has no payload or the payload is not valid base64.
func (f UploadedFile) Payload() ([]byte, bool) {
	_, encoded, found := strings.Cut(f.DataURL, ",")
	if !found || encoded == "" {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}
