// Package tasks runs the multi-request operations of the Downbeats client with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.Walk] : Assemble one category's full tree
//     - Fetches the category detail (top-level subcategories and direct soundtracks)
//     - Fetches every subcategory breadth first, one call per node
//     - Returns a [models.CategoryTree] whose nodes carry no nested read-model lists
//
//  2. [Engine.WalkAll] : Walk every category in list order
//
//  3. [Engine.Export] : Write trees to disk
//     - Walks the requested categories (all when none are given)
//     - Writes each tree through the formatter package on a small worker pool
//     - Records failures per category and writes export_manifest.json
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [TreeEngine] implements [Engine] over a [services.Service]. Every API call waits on a shared
// [rate.Limiter] so large trees do not flood the server.
package tasks
