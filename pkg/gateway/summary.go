package gateway

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"project-memory-be/pkg/content"
	"project-memory-be/pkg/errs"
)

const (
	// PlaceholderDecision pads key decisions up to MinDecisions.
	PlaceholderDecision = "decision detail pending"
	// PlaceholderSummary is written when a document has no content to summarize.
	PlaceholderSummary = "No content has been written for this document yet."

	MinDecisions       = 3
	MaxDecisionWords   = 15
	MaxDecisionChars   = 120
	MaxSummaryWords    = 60 // roughly 80 tokens
	MinTags            = 2
	MaxTags            = 5
	MaxTagChars        = 24
	defaultFallbackTag = "general"
)

// SummaryConstraints describes one summarize call site.
type SummaryConstraints struct {
	Function     string // usage accounting name
	Purpose      string // extra instruction, e.g. the owning step
	MinSentences int
	MaxSentences int
	MaxDecisions int
	FallbackTags []string
}

// SummaryResult is the typed summary contract every call site consumes.
type SummaryResult struct {
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"key_decisions"`
	Tags         []string `json:"tags"`
}

type summaryPayload struct {
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"key_decisions"`
	Tags         []string `json:"tags"`
}

var (
	codeFence     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	bulletPrefix  = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)
	tagDisallowed = regexp.MustCompile(`[^a-z0-9-]+`)
	tagDashes     = regexp.MustCompile(`-{2,}`)
	sentenceEnd   = regexp.MustCompile(`[.!?]+(\s+|$)`)
)

func (c SummaryConstraints) normalized() SummaryConstraints {
	if c.MinSentences <= 0 {
		c.MinSentences = 1
	}
	if c.MaxSentences < c.MinSentences {
		c.MaxSentences = c.MinSentences
	}
	if c.MaxDecisions < MinDecisions {
		c.MaxDecisions = MinDecisions
	}
	return c
}

func summaryMessages(text string, c SummaryConstraints) (string, string) {
	system := fmt.Sprintf(`You turn project documents into structured memory.
Respond with one JSON object and nothing else:
{"summary": string, "key_decisions": [string], "tags": [string]}
- summary: %d to %d sentences, at most %d words, plain text.
- key_decisions: %d to %d concrete decisions, each at most %d words.
- tags: %d to %d lowercase hyphenated keywords.`,
		c.MinSentences, c.MaxSentences, MaxSummaryWords,
		MinDecisions, c.MaxDecisions, MaxDecisionWords,
		MinTags, MaxTags)
	if c.Purpose != "" {
		system += "\n" + c.Purpose
	}
	return system, "Document:\n" + text
}

// DecodeSummary parses a raw model reply into a SummaryResult that satisfies
// c. A reply without a usable summary is ErrMalformedModelResponse; the list
// fields are repaired rather than rejected.
func DecodeSummary(raw string, c SummaryConstraints) (*SummaryResult, error) {
	c = c.normalized()

	body := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(body); m != nil {
		body = m[1]
	}
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, errs.Wrap(errs.ErrMalformedModelResponse, err)
	}

	summary := clampSummary(content.Normalize(payload.Summary), c.MaxSentences)
	if summary == "" {
		return nil, errs.Wrapf(errs.ErrMalformedModelResponse, "reply has no summary")
	}

	return &SummaryResult{
		Summary:      summary,
		KeyDecisions: NormalizeDecisions(payload.KeyDecisions, c.MaxDecisions),
		Tags:         NormalizeTags(payload.Tags, c.FallbackTags),
	}, nil
}

func clampSummary(s string, maxSentences int) string {
	if s == "" {
		return ""
	}
	if maxSentences > 0 {
		ends := sentenceEnd.FindAllStringIndex(s, -1)
		if len(ends) > maxSentences {
			s = strings.TrimSpace(s[:ends[maxSentences-1][1]])
		}
	}
	words := strings.Fields(s)
	if len(words) > MaxSummaryWords {
		s = strings.Join(words[:MaxSummaryWords], " ") + "…"
	}
	return s
}

// NormalizeDecisions trims, shortens and dedupes decisions, keeps at most
// max of them and pads to MinDecisions with PlaceholderDecision.
func NormalizeDecisions(decisions []string, max int) []string {
	if max < MinDecisions {
		max = MinDecisions
	}
	out := make([]string, 0, max)
	seen := make(map[string]bool)
	for _, d := range decisions {
		d = bulletPrefix.ReplaceAllString(content.Normalize(d), "")
		d = shortenDecision(d)
		key := strings.ToLower(d)
		if d == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
		if len(out) == max {
			break
		}
	}
	for len(out) < MinDecisions {
		out = append(out, PlaceholderDecision)
	}
	return out
}

func shortenDecision(d string) string {
	words := strings.Fields(d)
	if len(words) > MaxDecisionWords {
		words = words[:MaxDecisionWords]
	}
	d = strings.Join(words, " ")
	runes := []rune(d)
	if len(runes) > MaxDecisionChars {
		d = strings.TrimSpace(string(runes[:MaxDecisionChars]))
	}
	return d
}

// NormalizeTag lowercases and hyphenates a tag, returning "" if nothing usable remains.
func NormalizeTag(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.TrimPrefix(t, "#")
	t = strings.Join(strings.Fields(t), "-")
	t = strings.ReplaceAll(t, "_", "-")
	t = tagDisallowed.ReplaceAllString(t, "")
	t = tagDashes.ReplaceAllString(t, "-")
	if len(t) > MaxTagChars {
		t = t[:MaxTagChars]
	}
	return strings.Trim(t, "-")
}

// NormalizeTags returns between MinTags and MaxTags unique tags, topping up
// from fallback and finally a generic tag.
func NormalizeTags(tags []string, fallback []string) []string {
	out := make([]string, 0, MaxTags)
	seen := make(map[string]bool)
	add := func(raw string) {
		t := NormalizeTag(raw)
		if t == "" || seen[t] || len(out) == MaxTags {
			return
		}
		seen[t] = true
		out = append(out, t)
	}

	for _, t := range tags {
		add(t)
	}
	for _, t := range fallback {
		if len(out) >= MinTags {
			break
		}
		add(t)
	}
	if len(out) < MinTags {
		add(defaultFallbackTag)
	}
	if len(out) < MinTags {
		add("project-memory")
	}
	return out
}

// TagsFromName derives fallback tags from a step or document name.
func TagsFromName(name string) []string {
	var tags []string
	if whole := NormalizeTag(name); whole != "" {
		tags = append(tags, whole)
	}
	for _, w := range strings.Fields(name) {
		if len([]rune(w)) < 4 {
			continue
		}
		tags = append(tags, w)
	}
	return tags
}

// PlaceholderDecisions is the decision list written for empty documents.
func PlaceholderDecisions() []string {
	return NormalizeDecisions(nil, MinDecisions)
}
