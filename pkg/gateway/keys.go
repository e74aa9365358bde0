package gateway

import (
	"strings"
	"unicode/utf8"

	"project-memory-be/pkg/errs"
)

// TruncationMarker is appended to model input that was cut to fit the budget.
const TruncationMarker = "\n[...content truncated...]"

// DefaultMaxInputChars bounds the text sent to the model per call.
const DefaultMaxInputChars = 3000

// KeySettings is everything key resolution depends on.
type KeySettings struct {
	AiDisabled  bool
	AccountKey  string
	DefaultKey  string
	KeyOptional bool // local backends accept calls without a key
}

// ResolveAPIKey picks the key for a model call: a disabled account fails,
// then the account key wins over the platform default.
func ResolveAPIKey(s KeySettings) (string, error) {
	if s.AiDisabled {
		return "", errs.ErrFeatureDisabled
	}
	if key := strings.TrimSpace(s.AccountKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(s.DefaultKey); key != "" {
		return key, nil
	}
	if s.KeyOptional {
		return "", nil
	}
	return "", errs.ErrNoApiKeyConfigured
}

// TruncateForModel returns text unchanged when it fits in maxChars runes,
// otherwise a rune-safe prefix followed by TruncationMarker whose total
// length stays within maxChars. The marker is dropped when maxChars cannot hold it.
func TruncateForModel(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	keep := maxChars - utf8.RuneCountInString(TruncationMarker)
	if keep <= 0 {
		// No room for the marker; a bare prefix is all that fits.
		return string(runes[:maxChars])
	}
	return string(runes[:keep]) + TruncationMarker
}
