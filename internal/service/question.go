package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
	"github.com/civicsprep/civics-practice/internal/repository"
)

// DynamicResolver resolves the current answer for a named lookup.
// *DynamicAnswersService satisfies it.
type DynamicResolver interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// QuestionService serves questions from the bank, refreshing the
// accepted answers of dynamic questions (current office-holders) on
// the way out.
type QuestionService struct {
	bank    *repository.QuestionBank
	dynamic DynamicResolver // nil disables dynamic refresh
	logger  *zap.Logger
}

func NewQuestionService(bank *repository.QuestionBank, dynamic DynamicResolver, logger *zap.Logger) *QuestionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuestionService{
		bank:    bank,
		dynamic: dynamic,
		logger:  logger,
	}
}

// RandomQuestions draws n distinct questions for the variant.
func (s *QuestionService) RandomQuestions(ctx context.Context, n int, variant string) ([]entities.Question, error) {
	records, err := s.bank.GetRandom(n, variant)
	if err != nil {
		return nil, err
	}

	questions := make([]entities.Question, 0, len(records))
	for _, r := range records {
		questions = append(questions, s.resolve(ctx, r))
	}
	return questions, nil
}

// GetByID returns one question for grading.
func (s *QuestionService) GetByID(ctx context.Context, id int, variant string) (entities.Question, error) {
	record, err := s.bank.GetByID(id, variant)
	if err != nil {
		return entities.Question{}, err
	}
	return s.resolve(ctx, record), nil
}

// resolve replaces the accepted answers of a dynamic question with the
// current live answer. A failed lookup falls back to the bank's stored
// answers so the question stays servable.
func (s *QuestionService) resolve(ctx context.Context, r repository.Record) entities.Question {
	q := r.Question
	if r.Dynamic == "" || s.dynamic == nil {
		return q
	}

	answer, err := s.dynamic.Lookup(ctx, r.Dynamic)
	if err != nil {
		s.logger.Warn("dynamic answer lookup failed, serving stored answers",
			zap.Int("question_id", r.ID), zap.String("lookup", r.Dynamic), zap.Error(err))
		return q
	}

	q.Answers = []string{answer}
	return q
}
