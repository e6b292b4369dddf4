package ingest

import "context"

// Sink is the persistence boundary the pipeline writes through. The SQLite
// store satisfies it; tests substitute an in-memory recorder.
type Sink interface {
	InsertTournament(ctx context.Context, id, name string, startAt int64) error
	InsertEvent(ctx context.Context, id, name, tournamentID string) error

	// UpsertPlayer must be a no-op when the player ID is already present.
	UpsertPlayer(ctx context.Context, id, gamerTag string) error

	InsertStanding(ctx context.Context, playerID, eventID string, placement int) error

	// InsertSetResult may be called with entrant IDs in the winner/loser
	// positions; RewriteSetResultKey corrects them once identities resolve.
	InsertSetResult(ctx context.Context, setID, eventID, winnerID, loserID string, winnerScore, loserScore float64, duration *int64) error

	// RewriteSetResultKey must be idempotent and safe in either order
	// relative to the inserts that reference oldKey.
	RewriteSetResultKey(ctx context.Context, oldKey, playerID string) error
}
