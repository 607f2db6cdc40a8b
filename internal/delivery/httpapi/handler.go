package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
	"github.com/civicsprep/civics-practice/internal/repository"
	"github.com/civicsprep/civics-practice/internal/service"
)

// QuestionProvider serves questions for fetching and grading.
type QuestionProvider interface {
	RandomQuestions(ctx context.Context, n int, variant string) ([]entities.Question, error)
	GetByID(ctx context.Context, id int, variant string) (entities.Question, error)
}

// Grader decides whether an answer is correct.
type Grader interface {
	Grade(ctx context.Context, q entities.Question, answer string) (bool, error)
}

// ConfigProvider lists the test variant definitions.
type ConfigProvider interface {
	All() []entities.TestConfig
}

// Handler exposes the quiz API consumed by the practice-test client.
type Handler struct {
	questions QuestionProvider
	grader    Grader
	configs   ConfigProvider
	logger    *zap.Logger
}

func NewHandler(questions QuestionProvider, grader Grader, configs ConfigProvider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		questions: questions,
		grader:    grader,
		configs:   configs,
		logger:    logger,
	}
}

// Router builds the API routes. When staticDir is non-empty the built
// front end is served for every non-API path.
func (h *Handler) Router(staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(loggingMiddleware(h.logger))

	r.HandleFunc("/api/test-configs", h.listTestConfigs).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/questions", h.fetchQuestions).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/submit-answer/{questionId}", h.submitAnswer).Methods(http.MethodPost, http.MethodOptions)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}

type testConfigsResponse struct {
	Configs []entities.TestConfig `json:"configs"`
}

type questionsResponse struct {
	Questions []entities.Question `json:"questions"`
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

type submitAnswerResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) listTestConfigs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, testConfigsResponse{Configs: h.configs.All()})
}

func (h *Handler) fetchQuestions(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter n must be a positive integer"})
		return
	}
	variant := r.URL.Query().Get("testType")

	questions, err := h.questions.RandomQuestions(r.Context(), n, variant)
	if err != nil {
		h.writeBankError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, err := strconv.Atoi(mux.Vars(r)["questionId"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question id must be an integer"})
		return
	}
	variant := r.URL.Query().Get("testType")

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be JSON with an answer field"})
		return
	}

	question, err := h.questions.GetByID(r.Context(), questionID, variant)
	if err != nil {
		h.writeBankError(w, err)
		return
	}

	correct, err := h.grader.Grade(r.Context(), question, req.Answer)
	if err != nil {
		// Grading ran but could not decide; the client treats any
		// non-boolean result as an unknown verdict.
		if errors.Is(err, service.ErrVerdictUndetermined) {
			writeJSON(w, http.StatusOK, submitAnswerResponse{Result: "unknown"})
			return
		}
		h.logger.Error("grading failed", zap.Int("question_id", questionID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "grading failed"})
		return
	}

	writeJSON(w, http.StatusOK, submitAnswerResponse{Result: strconv.FormatBool(correct)})
}

func (h *Handler) writeBankError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrUnknownVariant):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown test variant"})
	case errors.Is(err, repository.ErrQuestionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "question not found"})
	case errors.Is(err, repository.ErrNotEnoughQuestions):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "requested more questions than the bank holds"})
	default:
		h.logger.Error("question bank error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
