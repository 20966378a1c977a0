// Package services implements the client side of the Downbeats content API.
//
// # Service Interface
//
// [Service] groups the category, subcategory and soundtrack operations. [DownbeatsService] implements it over HTTP;
// test doubles live in internal/testing.
//
// # Transport
//
// [APIService] issues raw requests against {API_BASE_URL}/downbeats and returns an [APIResponse] without
// interpreting the status code. Writes are encoded by [EncodeForm] as multipart/form-data with the text fields
// in a fixed order and an optional "thumbnail" file part.
//
// # Error Handling
//
// Every failed call returns a [*RequestError]: a non-2xx status, a network failure, or a 2xx body that does not
// decode. The message is the JSON "message" field from the response when present, otherwise an
// operation-specific fallback such as "Failed to fetch categories". RequestError matches [shared.ErrAPIRequest]
// with errors.Is. Callers display the message; they do not branch on the status code.
//
// # Retrieval
//
// Each read returns exactly one level of the hierarchy. Deeper trees are assembled by issuing one call per node
// (see internal/tasks).
package services
