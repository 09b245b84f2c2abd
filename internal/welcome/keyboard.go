package welcome

import (
	"fmt"
	"net/url"

	"github.com/rg/gatekeeper/internal/messaging"
)

// ClaimAction is the callback data of the JOIN NOW button. It is the same for
// every gate message.
const ClaimAction = "join_now"

const (
	claimButtonText = "JOIN NOW"
	shareButtonText = "𝙎𝙃𝘼𝙍𝙀(%d/%d) - 𝑷𝑰𝑵𝑨𝒀 𝑳𝑨𝑷𝑨𝑮𝑨𝑵 𝑻𝑨𝑹𝑨💦"
	shareBaseURL    = "https://t.me/share/url"
)

// Gate builds the share/claim keyboard attached to every welcome message.
type Gate struct {
	link     string
	text     string
	required int
}

func NewGate(link, text string, required int) *Gate {
	return &Gate{
		link:     link,
		text:     text,
		required: required,
	}
}

// ShareURL is the platform share-composition link for the channel. Both
// query values are percent-encoded.
func (g *Gate) ShareURL() string {
	q := url.Values{}
	q.Set("url", g.link)
	if g.text != "" {
		q.Set("text", g.text)
	}
	return shareBaseURL + "?" + q.Encode()
}

// Keyboard renders the gate with the given share count.
func (g *Gate) Keyboard(shareCount int) *messaging.Keyboard {
	return &messaging.Keyboard{
		Rows: [][]messaging.Button{
			{{Text: fmt.Sprintf(shareButtonText, shareCount, g.required), URL: g.ShareURL()}},
			{{Text: claimButtonText, CallbackData: ClaimAction}},
		},
	}
}

// DenialText is the alert shown when someone taps JOIN NOW.
func (g *Gate) DenialText() string {
	return fmt.Sprintf("YOU NEED TO SHARE %d TIMES TO UNLOCK THE CHANNEL", g.required)
}

func (g *Gate) Required() int {
	return g.required
}
