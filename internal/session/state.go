package session

import (
	"errors"
	"fmt"
)

// Phase is the controller's request state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFreshRequesting
	PhaseAppendRequesting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFreshRequesting:
		return "fresh-requesting"
	case PhaseAppendRequesting:
		return "append-requesting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Form holds the exam parameters chosen by the teacher.
type Form struct {
	Subject      string
	Grade        string
	Difficulty   string
	QuestionType string
	Topic        string
	Count        int
}

// AppendOptions describes an "add more questions" request.
type AppendOptions struct {
	Count       int
	Type        string
	Instruction string
}

// Upload is a document attached to the session.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ErrBusy is returned when a request is started while another is in flight.
var ErrBusy = errors.New("a generation request is already in progress")

// ErrInvalidCount rejects an append request for fewer than one question.
type ErrInvalidCount struct {
	Count int
}

func (e *ErrInvalidCount) Error() string {
	return fmt.Sprintf("number of questions to add must be at least 1, got %d", e.Count)
}

// ErrUnsupportedType rejects an upload whose MIME type cannot be extracted.
type ErrUnsupportedType struct {
	Name     string
	MIMEType string
}

func (e *ErrUnsupportedType) Error() string {
	if e.MIMEType == "" {
		return fmt.Sprintf("%s: unsupported file type (use .txt, .pdf or .docx)", e.Name)
	}
	return fmt.Sprintf("%s: unsupported file type %q (use .txt, .pdf or .docx)", e.Name, e.MIMEType)
}

// ErrFileTooLarge rejects an upload above the size limit.
type ErrFileTooLarge struct {
	Name  string
	Size  int
	Limit int
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("%s is %d bytes; the limit is %d MB", e.Name, e.Size, e.Limit>>20)
}
