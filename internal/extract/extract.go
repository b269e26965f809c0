// Package extract turns uploaded documents into plain text for prompts.
package extract

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Accepted upload MIME types.
const (
	MIMEPlainText = "text/plain"
	MIMEPDF       = "application/pdf"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxUploadBytes is the largest document accepted for upload (5 MB).
const MaxUploadBytes = 5 << 20

// MaxMaterialChars bounds extracted text embedded in a prompt.
const MaxMaterialChars = 15000

// Material is an uploaded document as carried on the wire.
type Material struct {
	Content  string `json:"content"` // base64
	MIMEType string `json:"type"`
}

// Format is the extraction strategy selected for a MIME type.
type Format string

const (
	FormatNone Format = ""
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatWord Format = "word"
)

// Detect maps a MIME type to the extraction strategy. Parameters such as
// "; charset=utf-8" are ignored.
func Detect(mimeType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "":
		return FormatNone
	case mt == MIMEPlainText:
		return FormatText
	case mt == MIMEPDF:
		return FormatPDF
	case mt == MIMEDocx, strings.Contains(mt, "word"):
		return FormatWord
	default:
		return FormatNone
	}
}

// Supported reports whether mimeType is one of the accepted upload types.
func Supported(mimeType string) bool {
	return Detect(mimeType) != FormatNone
}

// MIMEForFile guesses the upload MIME type from a file name's extension.
// Unknown extensions yield "".
func MIMEForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".md":
		return MIMEPlainText
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDocx
	default:
		return ""
	}
}

// Extract returns the plain text of data interpreted as mimeType.
// Unsupported types and empty input yield "" with no error. Any decode
// failure is returned as *ErrExtractionFailed and no partial text.
func Extract(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	format := Detect(mimeType)
	logrus.WithFields(logrus.Fields{
		"mime":   mimeType,
		"format": format,
		"bytes":  len(data),
	}).Debug("extracting document text")

	var (
		text string
		err  error
	)
	switch format {
	case FormatText:
		text = string(data)
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatWord:
		text, err = extractDocx(data)
	default:
		return "", nil
	}
	if err != nil {
		return "", &ErrExtractionFailed{MIMEType: mimeType, Err: err}
	}
	return text, nil
}

// DecodeMaterial decodes the base64 payload of m.
func DecodeMaterial(m Material) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(m.Content)
	if err != nil {
		return nil, &ErrExtractionFailed{MIMEType: m.MIMEType, Err: fmt.Errorf("decode base64: %w", err)}
	}
	return data, nil
}

// EncodeMaterial base64-encodes data for the wire.
func EncodeMaterial(data []byte, mimeType string) Material {
	return Material{Content: base64.StdEncoding.EncodeToString(data), MIMEType: mimeType}
}

// Truncate cuts text to at most max characters. The cut is a hard cutoff
// on a rune boundary.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}
