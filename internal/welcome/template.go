// Package welcome renders the locked welcome message and its gate keyboard.
package welcome

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rg/gatekeeper/internal/security"
)

const (
	SlotMemberName = "{memberName}"
	SlotChatTitle  = "{chatTitle}"
)

// DefaultTemplates is the built-in template set. The first entry doubles as
// the fixed-mode template.
var DefaultTemplates = []Template{
	"🔓 <b>LOCKED CHANNEL</b>\n\n" +
		"To unlock the channel, share this channel 3 times using the button below, " +
		"then tap <b>JOIN NOW</b>.",
	"👋 Welcome {memberName}!\n\n" +
		"🔓 <b>{chatTitle}</b> is locked. Share it 3 times with the button below, " +
		"then tap <b>JOIN NOW</b> to get in.",
	"🔒 Hey {memberName}, this group is <b>LOCKED</b>.\n\n" +
		"Share <b>{chatTitle}</b> 3 times, then press <b>JOIN NOW</b>.",
	"🎉 {memberName} just arrived in <b>{chatTitle}</b>!\n\n" +
		"Unlock full access: share 3 times, then tap <b>JOIN NOW</b>.",
}

// Template is an HTML message body with optional {memberName} and
// {chatTitle} slots.
type Template string

// Render substitutes the slots. Values are escaped for HTML parse mode.
func (t Template) Render(memberName, chatTitle string) string {
	r := strings.NewReplacer(
		SlotMemberName, security.EscapeHTML(memberName),
		SlotChatTitle, security.EscapeHTML(chatTitle),
	)
	return r.Replace(string(t))
}

// ChooseFunc returns an index in [0, n).
type ChooseFunc func(n int) int

// Selector picks the template for each new member.
type Selector struct {
	templates []Template
	random    bool
	choose    ChooseFunc
}

// NewSelector builds a selector over templates (DefaultTemplates when empty).
// With random set, each pick is uniform over the set; otherwise the first
// template is always used. A nil choose falls back to math/rand.
func NewSelector(templates []string, random bool, choose ChooseFunc) (*Selector, error) {
	set := make([]Template, 0, len(templates))
	for i, t := range templates {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("welcome template %d is empty", i)
		}
		set = append(set, Template(t))
	}
	if len(set) == 0 {
		set = append(set, DefaultTemplates...)
	}
	if choose == nil {
		choose = rand.Intn
	}

	return &Selector{
		templates: set,
		random:    random,
		choose:    choose,
	}, nil
}

func (s *Selector) Pick() Template {
	if !s.random || len(s.templates) == 1 {
		return s.templates[0]
	}
	return s.templates[s.choose(len(s.templates))]
}

// Render picks a template and fills it for one member.
func (s *Selector) Render(memberName, chatTitle string) string {
	return s.Pick().Render(memberName, chatTitle)
}

func (s *Selector) Len() int {
	return len(s.templates)
}
