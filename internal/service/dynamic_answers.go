package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/infra/llm"
)

var ErrUnknownLookup = errors.New("unknown dynamic answer lookup")

// lookupSource pairs a reference web page with the extraction question
// put to the model.
type lookupSource struct {
	url    string
	prompt string
}

// Lookups for civics questions whose answers change with elections and
// appointments. Keys are referenced by the "dynamic" field of question
// bank records.
var lookupSources = map[string]lookupSource{
	"president": {
		url:    "https://www.whitehouse.gov/administration/",
		prompt: "Identify the current President of the United States by name only. Return just the name as plain text.",
	},
	"vice_president": {
		url:    "https://www.whitehouse.gov/administration/",
		prompt: "Identify the current Vice President of the United States by name only. Return just the name as plain text.",
	},
	"president_party": {
		url:    "https://www.whitehouse.gov/administration/",
		prompt: "Identify the current President's political party. Return just the party name as plain text, like \"Democratic\" or \"Republican\".",
	},
	"speaker": {
		url:    "https://simple.wikipedia.org/wiki/Speaker_of_the_United_States_House_of_Representatives",
		prompt: "Identify the current Speaker of the United States House of Representatives. Return only the name as plain text.",
	},
	"chief_justice": {
		url:    "https://simple.wikipedia.org/wiki/Supreme_Court_of_the_United_States",
		prompt: "Find the name of the current Chief Justice of the United States Supreme Court. Return just the name as plain text.",
	},
	"justice_count": {
		url:    "https://simple.wikipedia.org/wiki/Supreme_Court_of_the_United_States",
		prompt: "How many justices currently serve on the Supreme Court? Return only the integer count.",
	},
}

type cachedAnswer struct {
	value     string
	fetchedAt time.Time
}

// DynamicAnswersService resolves the current answer for questions
// whose correct answer changes over time: it fetches a reference page
// and asks the model to extract the answer from it. Results are cached
// in-process; this is reference data, not user progress.
type DynamicAnswersService struct {
	completer  llm.Completer
	httpClient *http.Client
	logger     *zap.Logger
	ttl        time.Duration

	mu    sync.Mutex
	cache map[string]cachedAnswer
}

func NewDynamicAnswersService(completer llm.Completer, httpClient *http.Client, logger *zap.Logger) *DynamicAnswersService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DynamicAnswersService{
		completer:  completer,
		httpClient: httpClient,
		logger:     logger,
		ttl:        24 * time.Hour,
		cache:      make(map[string]cachedAnswer),
	}
}

// Lookup returns the current answer for the named lookup, fetching and
// extracting it when the cached value is missing or stale.
func (s *DynamicAnswersService) Lookup(ctx context.Context, name string) (string, error) {
	source, ok := lookupSources[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLookup, name)
	}
	if s.completer == nil {
		return "", errors.New("no model configured for dynamic lookups")
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok && time.Since(cached.fetchedAt) < s.ttl {
		s.mu.Unlock()
		return cached.value, nil
	}
	s.mu.Unlock()

	page, err := s.fetchPage(ctx, source.url)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Below is the text content of %s:\n\n%s\n\n%s", source.url, page, source.prompt)
	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = cachedAnswer{value: answer, fetchedAt: time.Now()}
	s.mu.Unlock()

	s.logger.Info("dynamic answer refreshed", zap.String("lookup", name))
	return answer, nil
}

func (s *DynamicAnswersService) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	return stripHTML(string(body)), nil
}

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	blankRe       = regexp.MustCompile(`\s+`)
)

// stripHTML reduces a page to its visible text so the prompt stays
// within the model's context window. It is deliberately crude; the
// model does the actual reading.
func stripHTML(page string) string {
	page = scriptStyleRe.ReplaceAllString(page, " ")
	page = tagRe.ReplaceAllString(page, " ")
	page = blankRe.ReplaceAllString(page, " ")

	const maxLen = 100000
	if len(page) > maxLen {
		page = page[:maxLen]
	}
	return strings.TrimSpace(page)
}
