// Package session drives exam generation on behalf of one teacher: it keeps
// the form, the uploaded document and the current question list, and runs
// one generation request at a time.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/examgen/internal/client"
	"github.com/abhisek/examgen/internal/extract"
	"github.com/abhisek/examgen/internal/logging"
	"github.com/abhisek/examgen/internal/prompt"
	"github.com/abhisek/examgen/internal/questions"
)

// Generator sends a generation request to the exam service.
type Generator interface {
	Generate(ctx context.Context, req client.GenerationRequest) (questions.Set, error)
}

// Controller is the session state machine:
// Idle -> Requesting -> Idle, whatever the outcome.
// A fresh request clears the question list when it starts; an append
// request keeps it and concatenates the new questions on success.
type Controller struct {
	gen Generator

	mu        sync.Mutex
	phase     Phase
	form      Form
	upload    *Upload
	questions questions.Set
	lastErr   error
}

// New creates an idle controller with an empty question list.
func New(gen Generator) *Controller {
	return &Controller{gen: gen}
}

// SetForm replaces the form. It is rejected while a request is in flight.
func (c *Controller) SetForm(f Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	c.form = f
	return nil
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Attach validates and stores a document. An empty mimeType is guessed from
// the file name. Oversized or unsupported files are rejected before any
// network call and leave the previous upload in place.
func (c *Controller) Attach(name string, data []byte, mimeType string) error {
	if mimeType == "" {
		mimeType = extract.MIMEForFile(name)
	}
	if !extract.Supported(mimeType) {
		return &ErrUnsupportedType{Name: name, MIMEType: mimeType}
	}
	if len(data) > extract.MaxUploadBytes {
		return &ErrFileTooLarge{Name: name, Size: len(data), Limit: extract.MaxUploadBytes}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	c.upload = &Upload{Name: name, MIMEType: mimeType, Data: data}
	return nil
}

// Upload returns the attached document, or nil.
func (c *Controller) Upload() *Upload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upload
}

// Load replaces the question list, e.g. with a previously saved exam.
func (c *Controller) Load(set questions.Set) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	c.questions = questions.Merge(nil, set, false)
	return nil
}

// Reset drops the upload, the questions and the last error.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	c.upload = nil
	c.questions = nil
	c.lastErr = nil
	return nil
}

// Questions returns a snapshot of the current list.
func (c *Controller) Questions() questions.Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(questions.Set(nil), c.questions...)
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastError is the failure of the most recent request, or nil.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Generate requests a fresh exam, replacing the current questions.
func (c *Controller) Generate(ctx context.Context) error {
	return c.run(ctx, nil)
}

// Append requests additional questions and adds them after the current ones.
func (c *Controller) Append(ctx context.Context, opts AppendOptions) error {
	if opts.Count < 1 {
		return &ErrInvalidCount{Count: opts.Count}
	}
	return c.run(ctx, &opts)
}

func (c *Controller) run(ctx context.Context, appendOpts *AppendOptions) error {
	isAppend := appendOpts != nil

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	if isAppend {
		c.phase = PhaseAppendRequesting
	} else {
		c.phase = PhaseFreshRequesting
		c.questions = nil
	}
	c.lastErr = nil
	form := c.form
	upload := c.upload
	c.mu.Unlock()

	log := logging.WithContext(ctx).WithFields(logrus.Fields{
		"append":  isAppend,
		"subject": form.Subject,
	})

	incoming, err := c.request(ctx, form, upload, appendOpts)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	if err != nil {
		c.lastErr = err
		log.WithError(err).Warn("generation failed")
		return err
	}
	c.questions = questions.Merge(c.questions, incoming, isAppend)
	log.WithFields(logrus.Fields{
		"received": len(incoming),
		"total":    len(c.questions),
	}).Info("questions updated")
	return nil
}

// request extracts the upload, assembles the prompt and calls the service.
// No lock is held.
func (c *Controller) request(ctx context.Context, form Form, upload *Upload, appendOpts *AppendOptions) (questions.Set, error) {
	req := client.GenerationRequest{
		Subject:  form.Subject,
		Grade:    form.Grade,
		IsAppend: appendOpts != nil,
	}

	var materialText string
	if upload != nil {
		text, err := extract.Extract(upload.Data, upload.MIMEType)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", upload.Name, err)
		}
		materialText = strings.TrimSpace(text)
		mat := extract.EncodeMaterial(upload.Data, upload.MIMEType)
		req.Material = &mat
	}

	params := prompt.Params{
		Subject:      form.Subject,
		Grade:        form.Grade,
		Difficulty:   form.Difficulty,
		QuestionType: form.QuestionType,
		Topic:        form.Topic,
		Count:        form.Count,
		MaterialText: materialText,
	}
	if appendOpts != nil {
		params.Append = &prompt.AppendConfig{
			Count:       appendOpts.Count,
			Type:        appendOpts.Type,
			Instruction: appendOpts.Instruction,
		}
	}
	req.UserPrompt = prompt.Build(params)

	return c.gen.Generate(ctx, req)
}
