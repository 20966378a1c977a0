// Package server is the reference Downbeats API: a chi router over the SQLite repositories.
//
// # Routes
//
// All API routes are mounted at {API_BASE_URL path}/downbeats, e.g. /api/downbeats/categories.
// Trailing slashes are stripped before routing, so the client may call /category/3/ or /category/3.
// Uploaded thumbnails are served from the media directory under /media.
//
// # Errors
//
// Failures are written as {"message": "..."} with status 400 for validation errors,
// 404 for unknown ids and 500 otherwise. Deletes answer 204 No Content.
//
// # Thumbnails
//
// [ThumbnailStore] accepts PNG, JPEG, GIF and WebP uploads and scales anything wider than
// 400px down before writing it to <media_dir>/thumbnails/<uuid><ext>.
package server
