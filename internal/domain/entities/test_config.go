package entities

import "fmt"

// TestConfig describes one edition of the civics test.
// It is fetched once at startup and treated as read-only reference
// data; no session owns it.
type TestConfig struct {
	TestType       string `json:"testType"`       // variant identifier, e.g. "2008" or "2025"
	TotalQuestions int    `json:"totalQuestions"` // size of the full question bank
	QuestionsAsked int    `json:"questionsAsked"` // questions per session
	PassThreshold  int    `json:"passThreshold"`  // correct answers required to pass
	Description    string `json:"description"`
	FilingDateInfo string `json:"filingDateInfo"` // which applicants the edition applies to
}

// Validate reports whether the config describes a runnable test.
// A zero-question session is not a defined input for the controller,
// so it is rejected here, upstream of any session.
func (tc TestConfig) Validate() error {
	if tc.TestType == "" {
		return fmt.Errorf("test config: missing testType")
	}
	if tc.QuestionsAsked <= 0 {
		return fmt.Errorf("test config %s: questionsAsked must be positive, got %d", tc.TestType, tc.QuestionsAsked)
	}
	if tc.TotalQuestions < tc.QuestionsAsked {
		return fmt.Errorf("test config %s: bank size %d is smaller than questionsAsked %d", tc.TestType, tc.TotalQuestions, tc.QuestionsAsked)
	}
	if tc.PassThreshold < 0 || tc.PassThreshold > tc.QuestionsAsked {
		return fmt.Errorf("test config %s: passThreshold %d out of range [0, %d]", tc.TestType, tc.PassThreshold, tc.QuestionsAsked)
	}
	return nil
}
