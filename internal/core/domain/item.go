package domain

import "time"

// ItemStatus is the lifecycle state of a ContentItem.
type ItemStatus string

// Item statuses.
const (
	// ItemPending is a freshly classified item not yet persisted.
	ItemPending ItemStatus = "pending"
	// ItemReady is a persisted item awaiting a publish decision.
	ItemReady ItemStatus = "ready"
	// ItemPublished is an item delivered to at least one channel.
	ItemPublished ItemStatus = "published"
	// ItemSkipped is an item no channel accepted.
	ItemSkipped ItemStatus = "skipped"
)

// IsTerminal reports whether the pipeline is done with an item in this status.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemPublished || s == ItemSkipped
}

// Importance bounds.
const (
	MinImportance = 1
	MaxImportance = 10
)

// MaxKeywords caps the keyword tags on an item.
const MaxKeywords = 5

// ContentItem is a classified, scored unit of content.
type ContentItem struct {
	// ID is the unique identifier (UUID), assigned when the item is persisted.
	ID string

	// QueryHash links back to the QueryRecord the item was derived from.
	QueryHash string

	// Title is the extracted headline.
	Title string

	// Summary is up to three leading sentences of the response.
	Summary string

	// Category is the first matching keyword group, or "general".
	Category string

	// ImportanceScore is always within [MinImportance, MaxImportance].
	ImportanceScore int

	// Keywords holds at most MaxKeywords vocabulary terms, in vocabulary order.
	Keywords []string

	// TargetChannels are the channel keys the item should be delivered to.
	TargetChannels []string

	// RawText is the upstream response the item was derived from.
	RawText string

	// CreatedAt is when the item was created.
	CreatedAt time.Time

	// PublishedAt is when the item reached ItemPublished. Zero otherwise.
	PublishedAt time.Time

	// Status is the lifecycle state.
	Status ItemStatus
}

// ClampImportance bounds score to [MinImportance, MaxImportance].
func ClampImportance(score int) int {
	if score < MinImportance {
		return MinImportance
	}
	if score > MaxImportance {
		return MaxImportance
	}
	return score
}
