package chatbot

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```[A-Za-z0-9_+-]*\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// StripCodeFence removes a markdown code fence the model may wrap its JSON in.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// cleanText trims model output and replaces invalid UTF-8 sequences.
func cleanText(s string) string {
	return strings.ToValidUTF8(strings.TrimSpace(s), "�")
}
