package extract

import "fmt"

// ErrExtractionFailed indicates an uploaded document could not be decoded
// or parsed (corrupt, encrypted or an unsupported sub-format).
type ErrExtractionFailed struct {
	MIMEType string
	Err      error
}

func (e *ErrExtractionFailed) Error() string {
	return fmt.Sprintf("extract %s: %v", e.MIMEType, e.Err)
}

func (e *ErrExtractionFailed) Unwrap() error { return e.Err }
