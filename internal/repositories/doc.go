// Package repositories implements SQLite persistence for the Downbeats content hierarchy.
//
// Key Implementations:
//   - [CategoryRepository] : Top-level categories and their cascade counts
//   - [SubcategoryRepository] : Self-referencing subcategory tree scoped to one category
//   - [SoundtrackRepository] : Soundtracks owned by a category and optionally a subcategory
//
// Deletes are hard deletes. Descendants go with their owner through ON DELETE CASCADE, which requires
// foreign keys to be enabled on the connection (see shared.NewDatabase).
// Ownership rules the schema cannot express (a parent subcategory in the same category, no cycles) are
// checked here and reported as [models.ValidationError].
package repositories
