// Package pagination provides a generic "fetch all pages" combinator for
// page-numbered remote queries.
//
// The start.gg API reports a total page count alongside page 1 of every
// paginated connection. FetchAll fetches page 1 first, reads that count, and
// then fetches the remaining pages concurrently under a configurable cap.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig()
//	tournaments, err := pagination.FetchAll(ctx, cfg, func(ctx context.Context, page int) (pagination.Page[startgg.Tournament], error) {
//		return client.Tournaments(ctx, page)
//	})
//
// The combinator is all-or-nothing per query: a failed page discards the
// whole result so that an incompletely paginated query is never persisted.
package pagination
