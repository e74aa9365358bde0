// Package content turns stored rich text into the plain text fed to models and the chunker.
package content

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainTextOnce   sync.Once
	plainTextPolicy *bluemonday.Policy
)

// PlainTextPolicy strips every element and attribute. Script and style bodies
// are dropped, and each removed tag leaves a space so adjacent blocks never fuse.
func PlainTextPolicy() *bluemonday.Policy {
	plainTextOnce.Do(func() {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		plainTextPolicy = p
	})
	return plainTextPolicy
}

// Normalize strips markup, decodes entities and collapses every whitespace run
// into a single space. The result is "" for empty or markup-only input.
func Normalize(richText string) string {
	if strings.TrimSpace(richText) == "" {
		return ""
	}

	text := html.UnescapeString(PlainTextPolicy().Sanitize(richText))

	// strings.Fields splits on unicode spaces, which covers decoded &nbsp;.
	return strings.Join(strings.Fields(text), " ")
}
