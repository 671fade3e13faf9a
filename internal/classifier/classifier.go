// Package classifier turns upstream response text into scored content items.
//
// Classification is a pure function over ordered data tables: category rules
// (first match wins), importance indicators (cumulative, each group once),
// a keyword vocabulary and a category to channel map. It never fails; bad
// input degrades the item instead.
package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

const (
	titleScanLines     = 5
	minLineRunes       = 20
	maxTitleRunes      = 120
	fallbackTitleRunes = 60
	summarySentences   = 3
	maxSummaryRunes    = 500
)

// Config holds the classification tables.
type Config struct {
	CategoryRules []CategoryRule
	Indicators    []Indicator
	Vocabulary    []VocabularyTerm
	ChannelMap    map[string][]string

	// AllChannels replaces the category channels when the score reaches
	// HighImportanceThreshold.
	AllChannels             []string
	DefaultChannel          string
	HighImportanceThreshold int
}

// DefaultConfig returns the built-in tables.
func DefaultConfig() Config {
	return Config{
		CategoryRules:           DefaultCategoryRules,
		Indicators:              DefaultIndicators,
		Vocabulary:              DefaultVocabulary,
		ChannelMap:              DefaultChannelMap,
		AllChannels:             DefaultAllChannels,
		DefaultChannel:          domain.DefaultChannelKey,
		HighImportanceThreshold: domain.DefaultHighImportanceThreshold,
	}
}

// Classifier maps (query, response) pairs to content items.
type Classifier struct {
	cfg Config
}

// New creates a classifier. Zero-valued fields of cfg take their defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.CategoryRules == nil {
		cfg.CategoryRules = def.CategoryRules
	}
	if cfg.Indicators == nil {
		cfg.Indicators = def.Indicators
	}
	if cfg.Vocabulary == nil {
		cfg.Vocabulary = def.Vocabulary
	}
	if cfg.ChannelMap == nil {
		cfg.ChannelMap = def.ChannelMap
	}
	if len(cfg.AllChannels) == 0 {
		cfg.AllChannels = def.AllChannels
	}
	if cfg.DefaultChannel == "" {
		cfg.DefaultChannel = def.DefaultChannel
	}
	if cfg.HighImportanceThreshold == 0 {
		cfg.HighImportanceThreshold = def.HighImportanceThreshold
	}
	return &Classifier{cfg: cfg}
}

// Classify derives an item from the response to queryText.
func (c *Classifier) Classify(queryText, responseText string) domain.ContentItem {
	lower := strings.ToLower(responseText)
	category := c.Category(lower)
	score := c.Importance(lower)

	return domain.ContentItem{
		QueryHash:       domain.ContentHash(queryText),
		Title:           ExtractTitle(responseText, queryText),
		Summary:         ExtractSummary(responseText),
		Category:        category,
		ImportanceScore: score,
		Keywords:        c.Keywords(lower),
		TargetChannels:  c.Channels(category, score),
		RawText:         responseText,
		Status:          domain.ItemPending,
	}
}

// Category returns the first matching category for lower-cased text.
func (c *Classifier) Category(lower string) string {
	for _, rule := range c.cfg.CategoryRules {
		if !containsAny(lower, rule.Terms) {
			continue
		}
		if rule.RefinedCategory != "" && containsAny(lower, rule.Refine) {
			return rule.RefinedCategory
		}
		return rule.Category
	}
	return CategoryGeneral
}

// Importance scores lower-cased text. Each indicator group counts once.
func (c *Classifier) Importance(lower string) int {
	score := BaselineImportance
	for _, ind := range c.cfg.Indicators {
		if containsAny(lower, ind.Terms) {
			score += ind.Weight
		}
	}
	return domain.ClampImportance(score)
}

// Keywords returns matched vocabulary terms in vocabulary order.
func (c *Classifier) Keywords(lower string) []string {
	var out []string
	for _, term := range c.cfg.Vocabulary {
		if containsAny(lower, term.Match) {
			out = append(out, term.Display)
			if len(out) == domain.MaxKeywords {
				break
			}
		}
	}
	return out
}

// Channels returns the target channel keys for a category and score.
func (c *Classifier) Channels(category string, score int) []string {
	var src []string
	switch {
	case score >= c.cfg.HighImportanceThreshold:
		src = c.cfg.AllChannels
	case len(c.cfg.ChannelMap[category]) > 0:
		src = c.cfg.ChannelMap[category]
	default:
		src = []string{c.cfg.DefaultChannel}
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ExtractTitle returns the first usable line among the leading lines of text,
// or a shortened form of the query.
func ExtractTitle(text, queryText string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minLineRunes || strings.HasPrefix(line, "http") {
			continue
		}
		if title := strings.Trim(line, "#*_ \t"); title != "" {
			return truncateRunes(title, maxTitleRunes)
		}
	}
	return truncateRunes(strings.TrimSpace(queryText), fallbackTitleRunes) + "..."
}

// ExtractSummary keeps those of the leading sentences that are longer than
// the minimum length. Empty pieces between terminators count as sentences.
func ExtractSummary(text string) string {
	parts := splitSentences(text)
	if len(parts) > summarySentences {
		parts = parts[:summarySentences]
	}

	var sentences []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) <= minLineRunes {
			continue
		}
		sentences = append(sentences, strings.Join(strings.Fields(p), " "))
	}
	if len(sentences) == 0 {
		return ""
	}

	summary := strings.Join(sentences, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return truncateRunes(summary, maxSummaryRunes)
}

// splitSentences splits text at every '.', '!' or '?', keeping empty pieces.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}
