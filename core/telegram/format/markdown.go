// Package format prepares user- and admin-entered text (product names,
// descriptions, section content) for safe Markdown rendering.
package format

import (
	"fmt"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram Markdown version 1, the mode the bot
	// sends with.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram MarkdownV2.
	MarkdownV2 = 2
)

var (
	mdV1Specials = regexp.MustCompile("([_*\\\\\\[`])")
	mdV2Specials = regexp.MustCompile(`([_*\[\]()~` + "`" + `>#+\-=|{}.!])`)
)

// EscapeMarkdown backslash-escapes the characters the given Markdown
// version treats as formatting.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Specials.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Specials.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}
