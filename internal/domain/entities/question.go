package entities

// Question is a single civics question as served by the backend.
// It is immutable once fetched. Answers holds the accepted answer
// strings and is only populated when the backend chooses to expose
// them for review.
type Question struct {
	ID      int      `json:"id"`       // unique within a test variant
	Text    string   `json:"question"` // prompt shown to the user
	Answers []string `json:"answers,omitempty"`
}
