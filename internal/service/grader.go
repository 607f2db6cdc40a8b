package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
	"github.com/civicsprep/civics-practice/internal/infra/llm"
)

// ErrVerdictUndetermined is returned when correctness could not be
// decided: the model call failed or its reply was not a strict yes/no.
// The HTTP handler maps it to a non-boolean result, which the client
// surfaces as an unknown verdict.
var ErrVerdictUndetermined = errors.New("verdict could not be determined")

// GraderService decides whether a free-text answer to a civics
// question is correct. An exact match against the accepted answers
// wins immediately; otherwise the language model judges semantic
// equivalence. With no model configured, unmatched answers are graded
// incorrect.
type GraderService struct {
	completer llm.Completer // nil disables model grading
	logger    *zap.Logger
}

func NewGraderService(completer llm.Completer, logger *zap.Logger) *GraderService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GraderService{
		completer: completer,
		logger:    logger,
	}
}

// Grade evaluates the answer against the question's accepted answers.
func (s *GraderService) Grade(ctx context.Context, q entities.Question, answer string) (bool, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, nil
	}

	for _, accepted := range q.Answers {
		if strings.EqualFold(answer, strings.TrimSpace(accepted)) {
			return true, nil
		}
	}

	if s.completer == nil {
		return false, nil
	}

	return s.gradeWithModel(ctx, q, answer)
}

func (s *GraderService) gradeWithModel(ctx context.Context, q entities.Question, answer string) (bool, error) {
	prompt := buildGradingPrompt(q, answer)

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("model grading failed", zap.Int("question_id", q.ID), zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrVerdictUndetermined, err)
	}

	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}

	s.logger.Warn("model grading reply not a strict yes/no",
		zap.Int("question_id", q.ID), zap.String("reply", reply))
	return false, ErrVerdictUndetermined
}

func buildGradingPrompt(q entities.Question, answer string) string {
	var b strings.Builder
	b.WriteString("You are grading the U.S. naturalization civics test.\n")
	fmt.Fprintf(&b, "Question: %s\n", q.Text)
	if len(q.Answers) > 0 {
		b.WriteString("Accepted answers:\n")
		for _, a := range q.Answers {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	fmt.Fprintf(&b, "Applicant's answer: %s\n", answer)
	b.WriteString("Is the applicant's answer an acceptable answer to the question? " +
		"Minor spelling mistakes and paraphrases of an accepted answer count. " +
		"Reply with exactly one word: yes or no.")
	return b.String()
}
