package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/ingest"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const maxUploadBytes = 10 << 20

// Handler exposes the assessment use cases as a JSON API.
type Handler struct {
	service *app.AssessmentService
	clock   *ClockHandler
}

func NewHandler(service *app.AssessmentService, tick time.Duration) *Handler {
	return &Handler{service: service, clock: NewClockHandler(service, tick)}
}

// Router mounts every route. An empty origins list allows any origin.
func (h *Handler) Router(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/levels", h.levels)
	r.Post("/start-assessment", h.start)
	r.Post("/submit-assessment", h.submit)
	r.Post("/upload-questions", h.upload)
	r.Route("/assessments/{sessionID}", func(ar chi.Router) {
		ar.Get("/", h.snapshot)
		ar.Post("/answers", h.answer)
		ar.Get("/result", h.result)
		ar.Get("/clock", h.clock.ServeWS)
	})
	return r
}

type startResponse struct {
	SessionID string                `json:"sessionId"`
	Deadline  time.Time             `json:"deadline"`
	Questions []domain.QuestionView `json:"questions"`
}

type answerRequest struct {
	QuestionID  string `json:"questionId"`
	OptionIndex *int   `json:"optionIndex"`
}

type submitRequest struct {
	SessionID string         `json:"sessionId"`
	Answers   map[string]int `json:"answers"`
}

type uploadResponse struct {
	Message  string `json:"message"`
	Uploaded int    `json:"uploaded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.Levels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"levels": levels})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	var cfg domain.SessionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
		return
	}
	session, err := h.service.Start(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{
		SessionID: session.ID(),
		Deadline:  session.Deadline(),
		Questions: session.Views(),
	})
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
		return
	}
	if req.QuestionID == "" || req.OptionIndex == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "questionId and optionIndex required"})
		return
	}
	snap, err := h.service.Answer(r.Context(), chi.URLParam(r, "sessionID"), req.QuestionID, *req.OptionIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sessionId required"})
		return
	}
	result, err := h.service.Submit(r.Context(), req.SessionID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no file uploaded"})
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no file uploaded"})
		return
	}
	defer file.Close()

	questions, err := ingest.ParseCSV(file)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := h.service.ImportQuestions(r.Context(), questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: "questions uploaded", Uploaded: n})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidLevel), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrResultNotReady):
		return http.StatusConflict
	case errors.Is(err, app.ErrImportDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
