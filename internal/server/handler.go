package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/examgen/internal/extract"
	"github.com/abhisek/examgen/internal/logging"
	"github.com/abhisek/examgen/internal/questiongen"
	"github.com/abhisek/examgen/internal/questions"
)

// maxBodyBytes admits a base64 encoded upload at the size limit plus the
// form fields.
const maxBodyBytes = extract.MaxUploadBytes*4/3 + 64<<10

type generateRequest struct {
	Subject    string            `json:"subject"`
	Grade      string            `json:"grade"`
	UserPrompt string            `json:"userPrompt"`
	Material   *extract.Material `json:"materialData"`
}

type generateResponse struct {
	Questions questions.Set `json:"questions"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type Handler struct {
	gen questiongen.Generator
}

func NewHandler(gen questiongen.Generator) *Handler {
	return &Handler{gen: gen}
}

// Generate handles POST /api/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logging.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large (uploads are limited to 5 MB)")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch, err := h.gen.Generate(r.Context(), questiongen.Request{
		Subject:    req.Subject,
		Grade:      req.Grade,
		UserPrompt: req.UserPrompt,
		Material:   req.Material,
	})
	if err != nil {
		status, msg := classify(err)
		entry := log.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error("generation failed")
		} else {
			entry.Warn("generation rejected")
		}
		if status == http.StatusTooManyRequests {
			setRetryAfter(w, err)
		}
		writeError(w, status, msg)
		return
	}

	questionsOut := batch.Questions
	if questionsOut == nil {
		questionsOut = questions.Set{}
	}
	writeJSON(w, http.StatusOK, generateResponse{Questions: questionsOut})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: h.gen.ModelID()})
}
