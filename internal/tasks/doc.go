// Package tasks implements multi-step client operations that are too long for
// a single request/response exchange.
//
// The [SyncEngine] pulls the whole catalog (books, authors, loans, stats)
// from the backend with rate-limited concurrent fetches, reports progress
// through a channel, and persists the result as a [models.CatalogSnapshot]
// for the offline dashboard and exports.
package tasks
