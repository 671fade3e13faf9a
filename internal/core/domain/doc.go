// Package domain defines the core business entities for Newsdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - QueryRecord: A ledger entry for one upstream query, keyed by content hash
//   - ContentItem: A classified, scored unit of content
//   - DeliveryReceipt: The outcome of sending one item to one channel
//   - DailyStats: Per-day counters for queries, items and errors
//   - SessionBudget: A scheduled batch run with its query budget and target
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
