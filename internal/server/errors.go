package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/examgen/internal/extract"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/modelout"
	"github.com/abhisek/examgen/internal/questiongen"
	"github.com/abhisek/examgen/internal/questions"
)

type errorBody struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// classify maps a generation error to a status code and a message fit for
// the person filling in the form.
func classify(err error) (int, string) {
	var (
		extraction  *extract.ErrExtractionFailed
		safety      *llm.ErrSafetyBlocked
		rateLimit   *llm.ErrRateLimit
		unavailable *llm.ErrProviderUnavailable
		empty       *llm.ErrEmptyOutput
		rejected    *llm.ErrRequestRejected
		format      *modelout.ErrUnrecoverableFormat
		missing     *questions.ErrMissingQuestionsKey
	)

	switch {
	case errors.Is(err, questiongen.ErrEmptyPrompt):
		return http.StatusBadRequest, "The prompt must not be empty."
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity,
			fmt.Sprintf("Could not read the uploaded document: %v", extraction.Err)
	case errors.As(err, &safety):
		return http.StatusUnprocessableEntity,
			"The AI declined to answer because of its safety filter. Try changing the topic."
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests, "Too many requests to the AI service. Please wait and try again."
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, "The AI service is busy. Please try again in a moment."
	case errors.As(err, &empty):
		return http.StatusBadGateway,
			fmt.Sprintf("The AI returned no output (stop reason: %s).", empty.StopReason)
	case errors.As(err, &format):
		return http.StatusBadGateway, "The AI returned an unfixable format. Please try again."
	case errors.As(err, &missing):
		return http.StatusBadGateway,
			fmt.Sprintf("The AI response did not match the expected schema: %v.", missing)
	case errors.As(err, &rejected):
		return http.StatusBadGateway, "The AI service rejected the request."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The AI took too long to respond. Please try again."
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "The request was cancelled."
	default:
		return http.StatusInternalServerError, "Something went wrong while generating questions."
	}
}

func setRetryAfter(w http.ResponseWriter, err error) {
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Message: msg}})
}
