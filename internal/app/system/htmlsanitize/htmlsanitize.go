// Package htmlsanitize reduces generator output to plain text.
//
// Generated summaries are stored in history and shown verbatim by the reader,
// so any markup a generator emits is removed before the text is recorded.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// IsPlainText reports whether content has nothing that looks like a tag.
func IsPlainText(content string) bool {
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

// PlainText strips all elements from s, dropping script and style bodies,
// and returns the remaining text unescaped. Content without tags is returned
// unchanged.
func PlainText(s string) string {
	if IsPlainText(s) {
		return s
	}
	return html.UnescapeString(getPolicy().Sanitize(s))
}
