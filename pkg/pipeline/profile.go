package pipeline

import (
	"strings"
	"unicode/utf8"

	"project-memory-be/internal/entity"
	"project-memory-be/pkg/gateway"
)

const (
	// ProfileEntries is how many recent memory entries a profile folds in.
	ProfileEntries = 3
	// ProfileDecisions caps the decisions quoted per entry.
	ProfileDecisions = 3
	MaxProfileChars  = 4000
)

// MemoryText is the text embedded for step memory and memory entries.
func MemoryText(title, summary string, decisions []string) string {
	var b strings.Builder
	if title = strings.TrimSpace(title); title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(summary))
	if len(decisions) > 0 {
		b.WriteString("\nKey decisions:")
		for _, d := range decisions {
			b.WriteString("\n- ")
			b.WriteString(d)
		}
	}
	return b.String()
}

// TopDecisions returns up to max decisions, skipping placeholders.
func TopDecisions(decisions []string, max int) []string {
	out := make([]string, 0, max)
	for _, d := range decisions {
		if len(out) == max {
			break
		}
		d = strings.TrimSpace(d)
		if d == "" || d == gateway.PlaceholderDecision {
			continue
		}
		out = append(out, d)
	}
	return out
}

// RecentDecisionLine renders one memory entry for the profile.
func RecentDecisionLine(e *entity.ProjectMemoryEntry) string {
	line := "- " + strings.TrimSpace(e.Title) + ": " + strings.TrimSpace(e.Summary)
	if top := TopDecisions(e.KeyDecisions, ProfileDecisions); len(top) > 0 {
		line += " | Decisions: " + strings.Join(top, "; ")
	}
	return line
}

// ProfilePrompt folds project attributes and recent entries into the
// digest prompt.
func ProfilePrompt(project *entity.Project, entries []*entity.ProjectMemoryEntry) string {
	var b strings.Builder
	b.WriteString(projectAttributes(project))
	b.WriteString("\nRecent memory entries:\n")
	for _, e := range entries {
		b.WriteString(RecentDecisionLine(e))
		b.WriteString("\n")
	}
	return b.String()
}

// ComposeProfile builds the full profile. The output depends only on its
// inputs, so the same entries and digest always produce the same profile.
func ComposeProfile(project *entity.Project, digest string, entries []*entity.ProjectMemoryEntry) string {
	var b strings.Builder
	b.WriteString(projectAttributes(project))
	if digest = strings.TrimSpace(digest); digest != "" {
		b.WriteString("Digest: ")
		b.WriteString(digest)
		b.WriteString("\n")
	}
	if len(entries) > 0 {
		b.WriteString("Recent decisions:\n")
		for _, e := range entries {
			b.WriteString(RecentDecisionLine(e))
			b.WriteString("\n")
		}
	}
	return truncateRunes(strings.TrimSpace(b.String()), MaxProfileChars)
}

func projectAttributes(p *entity.Project) string {
	var b strings.Builder
	field := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\n")
		}
	}
	field("Project", p.Name)
	field("Pitch", p.Pitch)
	field("Audience", p.Audience)
	field("Positioning", p.Positioning)
	field("Constraints", p.Constraints)
	return b.String()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
