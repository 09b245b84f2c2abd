package security

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
)

const redacted = "***REDACTED***"

// Sanitizer scrubs secrets out of text that is about to be logged. Transport
// errors from the Bot API client embed the request URL, and with it the bot
// token, so every logged error passes through here.
type Sanitizer struct {
	patterns []*regexp.Regexp
	literals []string
}

func NewSanitizer(patterns []string, literals ...string) (*Sanitizer, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid security pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}

	lits := make([]string, 0, len(literals))
	for _, l := range literals {
		if l != "" {
			lits = append(lits, l)
		}
	}

	return &Sanitizer{
		patterns: compiled,
		literals: lits,
	}, nil
}

func (s *Sanitizer) Sanitize(text string) string {
	result := text
	for _, lit := range s.literals {
		result = strings.ReplaceAll(result, lit, redacted)
	}
	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllString(result, redacted)
	}
	return result
}

// Err returns the sanitized error text, or "" for a nil error.
func (s *Sanitizer) Err(err error) string {
	if err == nil {
		return ""
	}
	if s == nil {
		return err.Error()
	}
	return s.Sanitize(err.Error())
}

var DefaultPatterns = []string{
	// Bot API tokens: <bot id>:<35 char secret>
	`[0-9]{6,12}:[A-Za-z0-9_-]{30,}`,
	`api[_-]?key[s]?\s*[:=]\s*["']?([^"'\s]+)`,
	`token[s]?\s*[:=]\s*["']?([^"'\s]+)`,
	`password[s]?\s*[:=]\s*["']?([^"'\s]+)`,
	`secret[s]?\s*[:=]\s*["']?([^"'\s]+)`,
	`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`,
}

// EscapeHTML prepares member-controlled text (display names, chat titles)
// for an HTML parse-mode message: control characters are dropped and markup
// characters escaped.
func EscapeHTML(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, s)
	return html.EscapeString(cleaned)
}
