package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
)

// Phase is the lifecycle state of a test session.
type Phase int

const (
	PhaseInitial  Phase = iota // variant chosen, no questions fetched yet
	PhaseRunning               // questions fetched, answering in progress
	PhaseFinished              // all questions consumed
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "RUNNING"
	case PhaseFinished:
		return "FINISHED"
	default:
		return "INITIAL"
	}
}

// QuestionClient is the slice of the quiz backend the controller needs.
// *api.Client satisfies it.
type QuestionClient interface {
	FetchQuestions(ctx context.Context, n int, testType string) ([]entities.Question, error)
	SubmitAnswer(ctx context.Context, questionID int, answer, testType string) (entities.Verdict, error)
}

// Controller sequences one practice-test session: it fetches a batch of
// questions, walks through them one at a time, records each submitted
// answer with its verdict, and derives the final score.
//
// Failures never escape the controller: session-start failures land in
// the error text and the session stays in INITIAL, submission failures
// degrade to an unknown verdict so the user can always move on. The
// presentation layer only ever observes Err and the verdict enum.
type Controller struct {
	client QuestionClient
	cfg    entities.TestConfig
	logger *zap.Logger

	mu        sync.Mutex
	phase     Phase
	questions []entities.Question
	cursor    int
	draft     string
	verdict   entities.Verdict
	graded    bool // verdict recorded for the current question
	inFlight  bool // a start or submit network call is outstanding
	errText   string
	answers   []entities.Answer
	epoch     int // session identity; results from a stale epoch are dropped
}

// New creates a controller for one test variant. cfg must have been
// validated upstream (QuestionsAsked > 0).
func New(client QuestionClient, cfg entities.TestConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		client: client,
		cfg:    cfg,
		logger: logger,
		phase:  PhaseInitial,
	}
}

// Start fetches the session's questions and enters RUNNING. It is a
// no-op outside INITIAL or while another call is in flight. A fetch
// failure or a question-count mismatch sets the error text and leaves
// the session in INITIAL.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.phase != PhaseInitial || c.inFlight {
		c.mu.Unlock()
		return
	}
	c.errText = ""
	c.answers = nil
	c.inFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	questions, err := c.client.FetchQuestions(ctx, c.cfg.QuestionsAsked, c.cfg.TestType)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Session was reset while the fetch was outstanding.
		return
	}
	c.inFlight = false

	if err != nil {
		c.logger.Warn("starting test failed", zap.String("test_type", c.cfg.TestType), zap.Error(err))
		c.errText = "An error occurred while fetching questions."
		return
	}
	if len(questions) != c.cfg.QuestionsAsked {
		c.errText = fmt.Sprintf("Expected %d questions but got %d", c.cfg.QuestionsAsked, len(questions))
		return
	}

	c.questions = questions
	c.cursor = 0
	c.draft = ""
	c.verdict = entities.VerdictUnknown
	c.graded = false
	c.phase = PhaseRunning
}

// Submit grades the current draft answer and appends the answer record.
// It is a no-op unless the session is RUNNING with an ungraded current
// question and no call in flight, so a duplicate submit can never
// append a second record. A grading failure records VerdictUnknown
// with the draft text preserved; the session continues.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	if c.phase != PhaseRunning || c.inFlight || c.graded {
		c.mu.Unlock()
		return
	}
	q := c.questions[c.cursor]
	draft := c.draft
	c.inFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	verdict, err := c.client.SubmitAnswer(ctx, q.ID, draft, c.cfg.TestType)
	if err != nil {
		c.logger.Warn("submitting answer failed", zap.Int("question_id", q.ID), zap.Error(err))
		verdict = entities.VerdictUnknown
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.inFlight = false
	c.verdict = verdict
	c.graded = true
	c.answers = append(c.answers, entities.NewAnswer(q, draft, verdict))
}

// NextQuestion advances past the current question once its verdict has
// been recorded. Consuming the last question moves the session to
// FINISHED; otherwise the draft and verdict are cleared for the next
// question.
func (c *Controller) NextQuestion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseRunning || c.inFlight || !c.graded {
		return
	}

	c.cursor++
	if c.cursor >= len(c.questions) {
		c.phase = PhaseFinished
		return
	}
	c.draft = ""
	c.verdict = entities.VerdictUnknown
	c.graded = false
}

// Restart abandons the current or finished session and immediately
// starts a new one with a fresh question batch.
func (c *Controller) Restart(ctx context.Context) {
	c.mu.Lock()
	if c.phase == PhaseInitial {
		c.mu.Unlock()
		return
	}
	c.reset()
	c.mu.Unlock()

	c.Start(ctx)
}

// ResetToInitial clears all session state without fetching, returning
// strictly to INITIAL. Used when abandoning a session to pick a
// different test variant.
func (c *Controller) ResetToInitial() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// reset clears every session field and bumps the epoch so any
// outstanding network call writes nothing. Caller holds the lock.
func (c *Controller) reset() {
	c.epoch++
	c.phase = PhaseInitial
	c.questions = nil
	c.cursor = 0
	c.draft = ""
	c.verdict = entities.VerdictUnknown
	c.graded = false
	c.inFlight = false
	c.errText = ""
	c.answers = nil
}

// Config returns the test variant this session runs against.
func (c *Controller) Config() entities.TestConfig {
	return c.cfg
}

// Phase returns the session's lifecycle state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the blocking error text from the last failed start, or
// an empty string.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

// Current returns the zero-based index and the current question.
// ok is false outside RUNNING.
func (c *Controller) Current() (int, entities.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseRunning {
		return 0, entities.Question{}, false
	}
	return c.cursor, c.questions[c.cursor], true
}

// SetDraft replaces the draft answer text for the current question.
// Ignored once the current question has been graded.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseRunning || c.graded {
		return
	}
	c.draft = text
}

// Draft returns the current draft answer text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// LastVerdict returns the verdict recorded for the current question.
// ok is false until Submit has completed for it.
func (c *Controller) LastVerdict() (entities.Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verdict, c.graded
}

// Submitting reports whether a start or submit call is in flight. The
// presentation layer is expected to disable its submission control
// while this is true; the controller rejects duplicates regardless.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Answers returns a copy of the answer history in question order.
func (c *Controller) Answers() []entities.Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.Answer, len(c.answers))
	copy(out, c.answers)
	return out
}

// CorrectCount counts the correctly answered questions so far.
func (c *Controller) CorrectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.correctCountLocked()
}

// Passed reports whether the answer history meets the pass threshold.
// Always derived from the history, never stored.
func (c *Controller) Passed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.correctCountLocked() >= c.cfg.PassThreshold
}

func (c *Controller) correctCountLocked() int {
	count := 0
	for _, a := range c.answers {
		if a.IsCorrect {
			count++
		}
	}
	return count
}
