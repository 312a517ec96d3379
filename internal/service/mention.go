package service

import (
	"fmt"

	"github.com/Kotliarevtsev/mentionbot/internal/models"
)

// Invisible character used as the text of the notification link.
const zeroWidth = "⁣"

// Mention renders the notification token for one member. Every token ends
// with an HTML link to the user's ID whose visible text is a zero-width
// character, so Telegram still delivers a ping even when the link itself
// displays nothing.
func Mention(m *models.Member, style models.TagStyle, emoji string) string {
	link := fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, m.UserID, zeroWidth)

	switch style {
	case models.TagStyleEmoji:
		label := m.Handle()
		if label == "" {
			label = m.FullName()
		}
		return emoji + " " + label + link
	case models.TagStyleName:
		return m.FullName() + link
	default: // models.TagStyleEmpty
		return m.Handle() + link
	}
}

// chunkMentions partitions tokens into contiguous chunks of at most size
// elements, preserving order. The last chunk may be smaller; size is clamped
// to a minimum of 1.
func chunkMentions(tokens []string, size int) [][]string {
	if size < 1 {
		size = 1
	}

	var chunks [][]string
	for len(tokens) > 0 {
		n := size
		if n > len(tokens) {
			n = len(tokens)
		}
		chunks = append(chunks, tokens[:n])
		tokens = tokens[n:]
	}
	return chunks
}
