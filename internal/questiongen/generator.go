// Package questiongen turns a generation request into a validated question
// batch: it extracts any attached material, calls the LLM with a fixed
// JSON-only contract and recovers the question set from the reply.
package questiongen

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/examgen/internal/extract"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/logging"
	"github.com/abhisek/examgen/internal/modelout"
	"github.com/abhisek/examgen/internal/questions"
)

// Purpose labels generation calls in the LLM event log.
const Purpose = "question-gen"

// Request is one generation call as received over the wire.
type Request struct {
	Subject    string
	Grade      string
	UserPrompt string
	Material   *extract.Material
}

// Generator produces question batches.
type Generator interface {
	Generate(ctx context.Context, req Request) (*questions.Batch, error)

	// ModelID names the model behind the generator.
	ModelID() string
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

func (g *LLMGenerator) ModelID() string {
	return g.provider.ModelID()
}

// Generate runs the pipeline for req. Errors keep their type: extraction
// failures are *extract.ErrExtractionFailed, provider failures are the llm
// error types, unparseable replies are *modelout.ErrUnrecoverableFormat and
// replies without a question array are *questions.ErrMissingQuestionsKey.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (*questions.Batch, error) {
	log := logging.WithContext(ctx)

	if strings.TrimSpace(req.UserPrompt) == "" {
		return nil, ErrEmptyPrompt
	}

	materialText, err := g.materialText(req.Material)
	if err != nil {
		return nil, err
	}
	if req.Material != nil && materialText == "" {
		log.WithField("mime_type", req.Material.MIMEType).Warn("material produced no text")
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, materialText)},
		},
		JSON:        true,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	parsed, err := modelout.Parse(resp.Text)
	if err != nil {
		return nil, err
	}

	batch, err := questions.Validate(parsed)
	if err != nil {
		return nil, err
	}

	for _, issue := range batch.Issues {
		log.WithFields(logrus.Fields{
			"index": issue.Index,
			"type":  issue.Type,
		}).Warn("question failed shape check: " + issue.Message)
	}
	log.WithFields(logrus.Fields{
		"questions": len(batch.Questions),
		"issues":    len(batch.Issues),
		"model":     resp.Model,
	}).Info("questions generated")

	return batch, nil
}

// materialText decodes, extracts and truncates m. A nil or empty m, or one
// of a type the extractor does not read, yields "" and generation goes on
// without material.
func (g *LLMGenerator) materialText(m *extract.Material) (string, error) {
	if m == nil || m.Content == "" || !extract.Supported(m.MIMEType) {
		return "", nil
	}

	data, err := extract.DecodeMaterial(*m)
	if err != nil {
		return "", err
	}

	text, err := extract.Extract(data, m.MIMEType)
	if err != nil {
		return "", err
	}

	return extract.Truncate(strings.TrimSpace(text), g.config.MaxMaterialChars), nil
}
