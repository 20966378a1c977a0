// Package models defines the content hierarchy shared by the Downbeats client and the reference API.
//
// The package contains three groups of types:
//
// 1. Read models returned by the API
//   - [Category] : Top-level grouping with optional thumbnail
//   - [CategoryDetail] : Category with its top-level subcategories and direct soundtracks
//   - [Subcategory] : Nested grouping owned by a category, optionally by a parent subcategory
//   - [Soundtrack] : Leaf entry pointing at an external audio or video URL
//   - [DeleteImpact] : Cascade counts reported before a delete
//
// 2. Write payloads sent as multipart forms
//   - [CategoryInput], [SubcategoryInput], [SoundtrackInput] with an optional [Upload] thumbnail
//
// 3. Trees assembled by walking the API one level at a time
//   - [CategoryTree], [SubcategoryTree]
//
// Thumbnails are relative paths (e.g. "/media/thumbnails/<uuid>.png") resolved against the media base URL.
package models
