package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeBank(t *testing.T, dir, variant, content string) {
	t.Helper()
	path := filepath.Join(dir, "civics-"+variant+".json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing bank fixture: %v", err)
	}
}

const sampleBank = `{
  "questions": [
    {"id": 1, "question": "q1", "answers": ["a1"]},
    {"id": 2, "question": "q2", "answers": ["a2", "a2b"]},
    {"id": 3, "question": "q3", "answers": []},
    {"id": 4, "question": "q4", "answers": [], "dynamic": "president"},
    {"id": 5, "question": "q5", "answers": ["a5"]}
  ]
}`

func TestNewQuestionBankLoads(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "2008", sampleBank)

	bank, err := NewQuestionBank(dir, "2008")
	if err != nil {
		t.Fatalf("NewQuestionBank returned error: %v", err)
	}

	size, err := bank.Size("2008")
	if err != nil || size != 5 {
		t.Errorf("Size = (%d, %v), want (5, nil)", size, err)
	}

	record, err := bank.GetByID(4, "2008")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if record.Dynamic != "president" {
		t.Errorf("dynamic marker not loaded: %+v", record)
	}
}

func TestNewQuestionBankMissingFile(t *testing.T) {
	_, err := NewQuestionBank(t.TempDir(), "2008")
	if err == nil {
		t.Fatal("expected an error for a missing bank file")
	}
}

func TestNewQuestionBankEmptyBank(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "2008", `{"questions": []}`)

	if _, err := NewQuestionBank(dir, "2008"); err == nil {
		t.Fatal("expected an error for an empty bank")
	}
}

func TestGetRandomDrawsDistinctQuestions(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "2008", sampleBank)
	bank, err := NewQuestionBank(dir, "2008")
	if err != nil {
		t.Fatalf("NewQuestionBank returned error: %v", err)
	}

	records, err := bank.GetRandom(3, "2008")
	if err != nil {
		t.Fatalf("GetRandom returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d questions, want 3", len(records))
	}

	seen := make(map[int]bool)
	for _, r := range records {
		if seen[r.ID] {
			t.Errorf("question %d drawn twice", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestGetRandomMoreThanBankSize(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "2008", sampleBank)
	bank, err := NewQuestionBank(dir, "2008")
	if err != nil {
		t.Fatalf("NewQuestionBank returned error: %v", err)
	}

	if _, err := bank.GetRandom(6, "2008"); !errors.Is(err, ErrNotEnoughQuestions) {
		t.Errorf("error = %v, want ErrNotEnoughQuestions", err)
	}
}

func TestUnknownVariant(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "2008", sampleBank)
	bank, err := NewQuestionBank(dir, "2008")
	if err != nil {
		t.Fatalf("NewQuestionBank returned error: %v", err)
	}

	if _, err := bank.GetRandom(1, "1999"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("GetRandom error = %v, want ErrUnknownVariant", err)
	}
	if _, err := bank.GetByID(1, "1999"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("GetByID error = %v, want ErrUnknownVariant", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "2008", sampleBank)
	bank, err := NewQuestionBank(dir, "2008")
	if err != nil {
		t.Fatalf("NewQuestionBank returned error: %v", err)
	}

	if _, err := bank.GetByID(99, "2008"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("error = %v, want ErrQuestionNotFound", err)
	}
}
