package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"quizgen-service/internal/app"
	"quizgen-service/internal/domain"
)

const (
	maxJSONBody     = 1 << 20
	defaultMaxPDF   = 10 << 20
	pdfFormField    = "pdf"
	multipartMemory = 8 << 20
)

// QuizHandler serves the REST quiz API.
type QuizHandler struct {
	service   *app.QuizService
	logger    zerolog.Logger
	maxUpload int64
}

func NewQuizHandler(service *app.QuizService, maxUpload int64, logger zerolog.Logger) *QuizHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxPDF
	}
	return &QuizHandler{
		service:   service,
		logger:    logger.With().Str("component", "quiz_handler").Logger(),
		maxUpload: maxUpload,
	}
}

// Register mounts the quiz routes on mux.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quiz/create/prompt", h.CreateFromPrompt)
	mux.HandleFunc("POST /api/quiz/create/pdf", h.CreateFromPDF)
	mux.HandleFunc("POST /api/quiz/create/url", h.CreateFromURL)
	mux.HandleFunc("PUT /api/quiz/update/{quizId}", h.Update)
	mux.HandleFunc("POST /api/quiz/verify/{quizId}", h.Verify)
	mux.HandleFunc("POST /api/quiz/join/{quizId}", h.Join)
	mux.HandleFunc("POST /api/quiz/submit", h.Submit)
	mux.HandleFunc("GET /api/quiz/leaderboards/{quizId}", h.Leaderboard)
}

func (h *QuizHandler) CreateFromPrompt(w http.ResponseWriter, r *http.Request) {
	var req app.CreateFromPromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	quiz, err := h.service.CreateFromPrompt(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) CreateFromURL(w http.ResponseWriter, r *http.Request) {
	var req app.CreateFromURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	quiz, err := h.service.CreateFromURL(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// CreateFromPDF expects a multipart form with the document in the "pdf"
// field and the quiz settings as plain form values.
func (h *QuizHandler) CreateFromPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, err)
			return
		}
		writeError(w, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	settings, err := settingsFromForm(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, _, err := r.FormFile(pdfFormField)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: missing %q file", errBadRequest, pdfFormField))
		return
	}
	defer file.Close()
	document, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if int64(len(document)) > h.maxUpload {
		writeError(w, h.logger, &http.MaxBytesError{Limit: h.maxUpload})
		return
	}

	quiz, err := h.service.CreateFromPDF(r.Context(), app.CreateFromPDFRequest{
		QuizSettings: settings,
		Document:     document,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.QuizPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	quiz, err := h.service.Update(r.Context(), r.PathValue("quizId"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req app.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	quiz, err := h.service.Verify(r.Context(), r.PathValue("quizId"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req app.JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	participant, err := h.service.Join(r.Context(), r.PathValue("quizId"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req app.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context(), r.PathValue("quizId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, domain.ErrInvalidAnswer) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func settingsFromForm(r *http.Request) (app.QuizSettings, error) {
	settings := app.QuizSettings{
		CreatorName:   r.FormValue("creatorName"),
		CreatorWallet: r.FormValue("creatorWallet"),
	}

	var err error
	if settings.NumParticipants, err = formInt(r, "numParticipants"); err != nil {
		return settings, err
	}
	if settings.QuestionCount, err = formInt(r, "questionCount"); err != nil {
		return settings, err
	}
	if settings.RewardPerScore, err = formFloat(r, "rewardPerScore"); err != nil {
		return settings, err
	}
	if raw := strings.TrimSpace(r.FormValue("totalCost")); raw != "" {
		cost, err := formFloat(r, "totalCost")
		if err != nil {
			return settings, err
		}
		settings.TotalCost = &cost
	}
	if raw := strings.TrimSpace(r.FormValue("isPublic")); raw != "" {
		if settings.IsPublic, err = strconv.ParseBool(raw); err != nil {
			return settings, fmt.Errorf("%w: isPublic must be a boolean", errBadRequest)
		}
	}
	return settings, nil
}

func formInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return v, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, key)
	}
	return v, nil
}
