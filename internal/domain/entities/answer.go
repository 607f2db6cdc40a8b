package entities

// Verdict is the three-valued outcome of grading one submitted answer.
// Unknown means the submission reached the backend but correctness
// could not be determined (unparseable result or transport failure).
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Answer records one submitted answer within a test session.
// Records are appended in question order, at most one per question per
// attempt, and live only for the duration of the session.
type Answer struct {
	Question  Question // the question as fetched, answers included if the backend sent them
	Text      string   // raw user answer text as submitted
	Verdict   Verdict
	IsCorrect bool // Verdict == VerdictCorrect; Unknown counts as incorrect
}

// NewAnswer builds an answer record from a grading verdict.
func NewAnswer(q Question, text string, verdict Verdict) Answer {
	return Answer{
		Question:  q,
		Text:      text,
		Verdict:   verdict,
		IsCorrect: verdict == VerdictCorrect,
	}
}
