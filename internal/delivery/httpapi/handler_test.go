package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
	"github.com/civicsprep/civics-practice/internal/repository"
	"github.com/civicsprep/civics-practice/internal/service"
)

type fakeQuestions struct {
	byID map[int]entities.Question
}

func (f *fakeQuestions) RandomQuestions(_ context.Context, n int, variant string) ([]entities.Question, error) {
	if variant != "2008" {
		return nil, repository.ErrUnknownVariant
	}
	if n > len(f.byID) {
		return nil, repository.ErrNotEnoughQuestions
	}
	out := make([]entities.Question, 0, n)
	for _, q := range f.byID {
		if len(out) == n {
			break
		}
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id int, variant string) (entities.Question, error) {
	if variant != "2008" {
		return entities.Question{}, repository.ErrUnknownVariant
	}
	q, ok := f.byID[id]
	if !ok {
		return entities.Question{}, repository.ErrQuestionNotFound
	}
	return q, nil
}

type fakeGrader struct {
	correct bool
	err     error
}

func (f *fakeGrader) Grade(_ context.Context, _ entities.Question, _ string) (bool, error) {
	return f.correct, f.err
}

type fakeConfigs struct{}

func (fakeConfigs) All() []entities.TestConfig {
	return []entities.TestConfig{{
		TestType:       "2008",
		TotalQuestions: 100,
		QuestionsAsked: 10,
		PassThreshold:  6,
	}}
}

func newTestHandler(grader Grader) *Handler {
	questions := &fakeQuestions{byID: map[int]entities.Question{
		1: {ID: 1, Text: "q1", Answers: []string{"a1"}},
		2: {ID: 2, Text: "q2"},
	}}
	return NewHandler(questions, grader, fakeConfigs{}, nil)
}

func do(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.Router("").ServeHTTP(rec, req)
	return rec
}

func TestListTestConfigsShape(t *testing.T) {
	rec := do(t, newTestHandler(&fakeGrader{}), http.MethodGet, "/api/test-configs", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Configs []entities.TestConfig `json:"configs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body.Configs) != 1 || body.Configs[0].TestType != "2008" {
		t.Errorf("unexpected configs %+v", body.Configs)
	}
}

func TestFetchQuestions(t *testing.T) {
	rec := do(t, newTestHandler(&fakeGrader{}), http.MethodGet, "/api/questions?n=2&testType=2008", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Questions []entities.Question `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body.Questions) != 2 {
		t.Errorf("got %d questions, want 2", len(body.Questions))
	}
}

func TestFetchQuestionsBadCount(t *testing.T) {
	h := newTestHandler(&fakeGrader{})

	for _, target := range []string{
		"/api/questions?testType=2008",
		"/api/questions?n=0&testType=2008",
		"/api/questions?n=abc&testType=2008",
	} {
		if rec := do(t, h, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestFetchQuestionsUnknownVariant(t *testing.T) {
	rec := do(t, newTestHandler(&fakeGrader{}), http.MethodGet, "/api/questions?n=2&testType=1999", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitAnswerResults(t *testing.T) {
	tests := []struct {
		name   string
		grader *fakeGrader
		want   string
	}{
		{name: "correct", grader: &fakeGrader{correct: true}, want: "true"},
		{name: "incorrect", grader: &fakeGrader{correct: false}, want: "false"},
		{name: "undetermined", grader: &fakeGrader{err: service.ErrVerdictUndetermined}, want: "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, newTestHandler(tc.grader), http.MethodPost,
				"/api/submit-answer/1?testType=2008", `{"answer":"a1"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var body struct {
				Result string `json:"result"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response not JSON: %v", err)
			}
			if body.Result != tc.want {
				t.Errorf("result = %q, want %q", body.Result, tc.want)
			}
		})
	}
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	rec := do(t, newTestHandler(&fakeGrader{}), http.MethodPost,
		"/api/submit-answer/99?testType=2008", `{"answer":"x"}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitAnswerBadBody(t *testing.T) {
	rec := do(t, newTestHandler(&fakeGrader{}), http.MethodPost,
		"/api/submit-answer/1?testType=2008", `not json`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestHandler(&fakeGrader{}), http.MethodOptions, "/api/test-configs", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
