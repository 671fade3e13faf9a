package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// maxHashtagKeywords caps the keyword hashtags in a message.
const maxHashtagKeywords = 3

const defaultEmoji = "📰"

var categoryEmoji = map[string]string{
	"ai":         "🧠",
	"it":         "💻",
	"automation": "🤖",
	"robotics":   "⚙️",
	"blockchain": "⛓️",
	"cloud":      "☁️",
	"mobile":     "📱",
	"security":   "🔒",
	"startup":    "🚀",
	"general":    defaultEmoji,
}

// CategoryEmoji returns the emoji for a category.
func CategoryEmoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return defaultEmoji
}

// TierPrefix returns the emphasis prefix for an importance score.
// Scores below 6 have none.
func TierPrefix(score int) string {
	switch {
	case score >= 9:
		return "🔥🔥🔥 BREAKTHROUGH: "
	case score == 8:
		return "🔥🔥 IMPORTANT: "
	case score == 7:
		return "🔥 NOTABLE: "
	case score == 6:
		return "📢 "
	default:
		return ""
	}
}

// Hashtags builds the tag line from the leading keywords and the category.
func Hashtags(keywords []string, category string) []string {
	seen := make(map[string]struct{})
	var tags []string
	add := func(word string) {
		tag := "#" + strings.ReplaceAll(strings.TrimSpace(word), " ", "_")
		key := strings.ToLower(tag)
		if tag == "#" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}

	for i, kw := range keywords {
		if i == maxHashtagKeywords {
			break
		}
		add(kw)
	}
	add(category)
	return tags
}

// markdownV2Reserved lists the characters Telegram MarkdownV2 requires escaped.
const markdownV2Reserved = "\\_*[]()~`>#+-=|{}.!"

// escapeMarkdown escapes every MarkdownV2 reserved character in s.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatMessage renders an item as a Telegram MarkdownV2 message stamped with sentAt.
func FormatMessage(item *domain.ContentItem, sentAt time.Time) string {
	var b strings.Builder

	b.WriteString(CategoryEmoji(item.Category))
	b.WriteString(" ")
	b.WriteString(escapeMarkdown(TierPrefix(item.ImportanceScore)))
	b.WriteString("*")
	b.WriteString(escapeMarkdown(item.Title))
	b.WriteString("*\n\n")

	if item.Summary != "" {
		b.WriteString(escapeMarkdown(item.Summary))
		b.WriteString("\n\n")
	}

	if tags := Hashtags(item.Keywords, item.Category); len(tags) > 0 {
		b.WriteString(escapeMarkdown(strings.Join(tags, " ")))
		b.WriteString("\n\n")
	}

	b.WriteString("📅 ")
	b.WriteString(escapeMarkdown(sentAt.Format("02.01.2006 15:04")))
	return b.String()
}
