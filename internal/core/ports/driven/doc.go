// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Ledger: Query records and the daily quota counter
//   - QueryExecutor: Browser session against the upstream assistant
//   - Classifier: Pure response to item transformation
//   - Sender: Delivery to one external channel
//   - ItemStore, ReceiptStore: Item and delivery persistence
//   - StatsStore: Per-day counters
//   - SessionStore: Session budgets and run history
//
// # Optional Interfaces
//
//   - HealthChecker: Adapters that can report connectivity
//   - SettingsStore, QueryPoolStore: File-backed configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
