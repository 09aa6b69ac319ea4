// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: Canonical, insertion-ordered chunk collection
//   - EdgeStore: Session-only links between chunks
//   - InferenceBackend: Answers text queries and generates images
//   - DocumentRenderer: Paginates a document and exposes its text surface
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GenerationJournal: Audit log of request lifecycles (SQLite).
//   - GenerationMetrics: Request counters and latencies (Prometheus).
//   - DocumentWatcher: Reloads the document when the file changes on disk.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
