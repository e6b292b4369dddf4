package ingest

import (
	"context"
)

// Resolver maps ephemeral entrant IDs to durable player identities.
//
// The map is rebuilt from scratch on every ingestion run and never persisted;
// entrant IDs only exist to be translated. Player IDs are deduplicated
// process-wide so each identity is written to the sink at most once per run.
type Resolver struct {
	sink     Sink
	players  map[string]struct{}
	entrants map[string]string
}

// NewResolver creates an empty resolver writing through sink.
func NewResolver(sink Sink) *Resolver {
	return &Resolver{
		sink:     sink,
		players:  make(map[string]struct{}),
		entrants: make(map[string]string),
	}
}

// RecordPlayer registers a durable player identity. A player ID seen before
// is a no-op; otherwise the identity is persisted through the sink.
func (r *Resolver) RecordPlayer(ctx context.Context, playerID, gamerTag string) error {
	if _, known := r.players[playerID]; known {
		return nil
	}
	if err := r.sink.UpsertPlayer(ctx, playerID, gamerTag); err != nil {
		return err
	}
	r.players[playerID] = struct{}{}
	playersRecorded.Inc()
	return nil
}

// MapEntrant records the entrant→player association (last write wins) and
// rewrites any set results already persisted under the raw entrant ID.
// Sets may be ingested before the identity map covers their entrants, so
// rows are inserted with entrant keys and corrected here once the mapping
// becomes known.
func (r *Resolver) MapEntrant(ctx context.Context, entrantID, playerID string) error {
	r.entrants[entrantID] = playerID
	return r.sink.RewriteSetResultKey(ctx, entrantID, playerID)
}

// Resolve looks up the player ID for an entrant ID.
func (r *Resolver) Resolve(entrantID string) (string, bool) {
	playerID, ok := r.entrants[entrantID]
	return playerID, ok
}
