package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"quizgen-service/internal/domain"
	"quizgen-service/internal/llm"
	"quizgen-service/internal/quizgen"
	"quizgen-service/internal/source"
)

// errBadRequest marks malformed request bodies and form values.
var errBadRequest = errors.New("malformed request")

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validationErrs validator.ValidationErrors
		rateLimit      *llm.ErrRateLimit
		unavailable    *llm.ErrProviderUnavailable
		invalid        *llm.ErrInvalidResponse
		truncated      *llm.ErrMaxTokensExceeded
		tooLarge       *http.MaxBytesError
	)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuizPrivate),
		errors.Is(err, domain.ErrQuizFull),
		errors.Is(err, domain.ErrAlreadyParticipated),
		errors.Is(err, domain.ErrParticipantNotFound):
		return http.StatusForbidden
	case errors.As(err, &validationErrs),
		errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, source.ErrInvalidURL),
		errors.Is(err, source.ErrUnsupportedType),
		errors.Is(err, source.ErrEmptyDocument),
		errors.Is(err, source.ErrMalformedDocument),
		errors.Is(err, quizgen.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rateLimit),
		errors.As(err, &unavailable),
		errors.As(err, &invalid),
		errors.As(err, &truncated),
		errors.Is(err, source.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// describeError logs err and returns its status with the message that is
// safe to show a client. Internal failures are never echoed back.
func describeError(logger zerolog.Logger, err error) (int, string) {
	status := statusFor(err)
	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Int("status", status).Msg("request failed")
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
	case status == http.StatusUnprocessableEntity:
		logger.Warn().Err(err).Msg("generation produced no questions")
	}
	return status, message
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status, message := describeError(logger, err)
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
