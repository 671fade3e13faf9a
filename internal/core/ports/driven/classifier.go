package driven

import "github.com/custodia-labs/newsdesk/internal/core/domain"

// Classifier turns an upstream response into a scored content item.
// Implementations must be pure: same input, same output, no I/O.
type Classifier interface {
	// Classify derives title, summary, category, importance, keywords and
	// target channels. The returned item has no ID and status pending.
	Classify(queryText, responseText string) domain.ContentItem
}
