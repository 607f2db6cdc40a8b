package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
)

var (
	ErrUnknownVariant     = errors.New("unknown test variant")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrNotEnoughQuestions = errors.New("not enough questions in bank")
)

// Record is one question bank entry. Dynamic, when set, names a live
// lookup whose result replaces the accepted answers before serving or
// grading (e.g. "president" for "Who is the President now?").
type Record struct {
	entities.Question
	Dynamic string `json:"dynamic,omitempty"`
}

type bankFile struct {
	Questions []Record `json:"questions"`
}

// QuestionBank provides read-only access to the civics questions of
// each test variant, loaded from per-variant JSON files.
type QuestionBank struct {
	banks map[string][]Record
}

// NewQuestionBank loads civics-<variant>.json from dir for every given
// variant.
func NewQuestionBank(dir string, variants ...string) (*QuestionBank, error) {
	banks := make(map[string][]Record, len(variants))

	for _, variant := range variants {
		path := filepath.Join(dir, fmt.Sprintf("civics-%s.json", variant))
		records, err := loadBank(path)
		if err != nil {
			return nil, fmt.Errorf("load bank for variant %s: %w", variant, err)
		}
		banks[variant] = records
	}

	return &QuestionBank{banks: banks}, nil
}

func loadBank(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var file bankFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, errors.New("bank contains no questions")
	}

	return file.Questions, nil
}

// Variants returns the loaded variant identifiers.
func (b *QuestionBank) Variants() []string {
	variants := make([]string, 0, len(b.banks))
	for v := range b.banks {
		variants = append(variants, v)
	}
	return variants
}

// Size returns the number of questions in the variant's bank.
func (b *QuestionBank) Size(variant string) (int, error) {
	bank, ok := b.banks[variant]
	if !ok {
		return 0, ErrUnknownVariant
	}
	return len(bank), nil
}

// GetRandom draws n distinct questions from the variant's bank.
func (b *QuestionBank) GetRandom(n int, variant string) ([]Record, error) {
	bank, ok := b.banks[variant]
	if !ok {
		return nil, ErrUnknownVariant
	}
	if n <= 0 || n > len(bank) {
		return nil, fmt.Errorf("%w: requested %d of %d", ErrNotEnoughQuestions, n, len(bank))
	}

	picked := make([]Record, 0, n)
	for _, idx := range rand.Perm(len(bank))[:n] {
		picked = append(picked, bank[idx])
	}
	return picked, nil
}

// GetByID returns the question with the given id from the variant's bank.
func (b *QuestionBank) GetByID(id int, variant string) (Record, error) {
	bank, ok := b.banks[variant]
	if !ok {
		return Record{}, ErrUnknownVariant
	}

	for _, r := range bank {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrQuestionNotFound
}
