// Package ingest implements the paginated ingestion and entity-resolution
// pipeline: Tournaments → Participants → Sets, with entrant→player identity
// resolution and win/loss derivation feeding the relational snapshot.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeahokpal/tuesday-trials-grid/pkg/pagination"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/ratelimit"
	"github.com/yeahokpal/tuesday-trials-grid/pkg/startgg"
)

// Prometheus metrics for pipeline progress.
var (
	tournamentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_tournaments_total",
		Help: "Total tournaments ingested",
	})

	playersRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_players_recorded_total",
		Help: "Total distinct players recorded",
	})

	setsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_sets_persisted_total",
		Help: "Total set results persisted",
	})

	setsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_sets_skipped_total",
		Help: "Total sets skipped as incomplete or unscored",
	})
)

// Client is the remote query surface the pipeline drives. *startgg.Client
// satisfies it.
type Client interface {
	Tournaments(ctx context.Context, page int) (pagination.Page[startgg.Tournament], error)
	Participants(ctx context.Context, tournamentID string, page, pageSize int) (pagination.Page[startgg.Participant], error)
	Sets(ctx context.Context, tournamentID string, eventIDs []string, page, pageSize int) (pagination.Page[startgg.Set], error)
}

// Waiter is the pacing dependency, satisfied by *ratelimit.Pacer.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Option customizes a Pipeline beyond its Config.
type Option func(*Pipeline)

// WithPacers replaces the pause implementations used between queries.
func WithPacers(participant, sets Waiter) Option {
	return func(p *Pipeline) {
		p.participantPacer = participant
		p.setsPacer = sets
	}
}

// Config holds pipeline configuration.
type Config struct {
	// NameFilter keeps only tournaments whose name contains this substring.
	NameFilter string

	// PageSize for participant and set queries.
	PageSize int

	// EventBatchSize is how many events share one sets query. Size 1 keeps
	// individual requests light at the cost of request count.
	EventBatchSize int

	// ParticipantPause is the pause after each tournament's participant fetch.
	ParticipantPause time.Duration

	// SetsPause is the pause after each sets fetch; sets queries are heavier
	// and more rate-limit-sensitive than participant queries.
	SetsPause time.Duration

	// Pagination configures the per-query page fan-out.
	Pagination pagination.Config
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		NameFilter:       "Trial",
		PageSize:         60,
		EventBatchSize:   1,
		ParticipantPause: 300 * time.Millisecond,
		SetsPause:        700 * time.Millisecond,
		Pagination:       pagination.DefaultConfig(),
	}
}

// Pipeline runs one full ingestion pass. Tournaments are processed strictly
// sequentially; the fixed pauses between queries are what make this an
// effective global rate limit.
type Pipeline struct {
	client   Client
	sink     Sink
	resolver *Resolver

	participantPacer Waiter
	setsPacer        Waiter

	cfg    Config
	logger zerolog.Logger
}

// New creates a pipeline writing through sink.
func New(client Client, sink Sink, cfg Config, opts ...Option) *Pipeline {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 60
	}
	if cfg.EventBatchSize <= 0 {
		cfg.EventBatchSize = 1
	}
	p := &Pipeline{
		client:           client,
		sink:             sink,
		resolver:         NewResolver(sink),
		participantPacer: ratelimit.NewPacer("participants", cfg.ParticipantPause),
		setsPacer:        ratelimit.NewPacer("sets", cfg.SetsPause),
		cfg:              cfg,
		logger:           log.With().Str("component", "ingest").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one ingestion pass.
//
// A failed tournament listing is fatal: no partial tournament list is
// acceptable. A failure inside one tournament's participant or set fetch
// also aborts the run; without resumability, continuing past a failed
// tournament would leave a snapshot that silently misses it.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	tournaments, err := pagination.FetchAll(ctx, p.cfg.Pagination, p.client.Tournaments)
	if err != nil {
		return fmt.Errorf("fetch tournaments: %w", err)
	}

	kept := tournaments[:0:0]
	for _, t := range tournaments {
		if strings.Contains(t.Name, p.cfg.NameFilter) {
			kept = append(kept, t)
		}
	}

	p.logger.Info().
		Int("fetched", len(tournaments)).
		Int("matched", len(kept)).
		Str("filter", p.cfg.NameFilter).
		Msg("Tournament listing complete")

	for _, tournament := range kept {
		if err := p.syncTournament(ctx, tournament); err != nil {
			return fmt.Errorf("tournament %s: %w", tournament.ID, err)
		}
		tournamentsTotal.Inc()
	}

	p.logger.Info().
		Int("tournaments", len(kept)).
		Dur("duration", time.Since(start)).
		Msg("Ingestion run complete")

	return nil
}

// syncTournament ingests one tournament: its events, its participants (which
// feed the identity map), and the sets of each event batch.
func (p *Pipeline) syncTournament(ctx context.Context, tournament startgg.Tournament) error {
	logger := p.logger.With().Str("tournament", string(tournament.ID)).Logger()

	var startAt int64
	if tournament.StartAt != nil {
		startAt = *tournament.StartAt
	}
	if err := p.sink.InsertTournament(ctx, string(tournament.ID), tournament.Name, startAt); err != nil {
		return err
	}

	eventIDs := make([]string, 0, len(tournament.Events))
	for _, event := range tournament.Events {
		if event == nil || event.ID == "" {
			continue
		}
		if err := p.sink.InsertEvent(ctx, string(event.ID), event.Name, string(tournament.ID)); err != nil {
			return err
		}
		eventIDs = append(eventIDs, string(event.ID))
	}

	participants, err := pagination.FetchAll(ctx, p.cfg.Pagination, func(ctx context.Context, page int) (pagination.Page[startgg.Participant], error) {
		return p.client.Participants(ctx, string(tournament.ID), page, p.cfg.PageSize)
	})
	if err != nil {
		return fmt.Errorf("fetch participants: %w", err)
	}
	if err := p.participantPacer.Wait(ctx); err != nil {
		return err
	}

	if err := p.ingestParticipants(ctx, participants); err != nil {
		return err
	}

	logger.Info().
		Int("participants", len(participants)).
		Int("events", len(eventIDs)).
		Msg("Participants ingested")

	for _, batch := range chunk(eventIDs, p.cfg.EventBatchSize) {
		sets, err := pagination.FetchAll(ctx, p.cfg.Pagination, func(ctx context.Context, page int) (pagination.Page[startgg.Set], error) {
			return p.client.Sets(ctx, string(tournament.ID), batch, page, p.cfg.PageSize)
		})
		if err != nil {
			return fmt.Errorf("fetch sets for events %v: %w", batch, err)
		}
		if err := p.setsPacer.Wait(ctx); err != nil {
			return err
		}

		persisted := 0
		for _, set := range sets {
			result, ok := DeriveSet(set, p.resolver.Resolve)
			if !ok {
				setsSkipped.Inc()
				continue
			}
			if err := p.sink.InsertSetResult(ctx, result.SetID, result.EventID,
				result.WinnerID, result.LoserID,
				result.WinnerScore, result.LoserScore, result.Duration); err != nil {
				return err
			}
			setsPersisted.Inc()
			persisted++
		}

		logger.Debug().
			Strs("events", batch).
			Int("sets", len(sets)).
			Int("persisted", persisted).
			Msg("Set batch ingested")
	}

	return nil
}

// ingestParticipants streams one tournament's participants into the identity
// map: every entrant ID must be mapped before that tournament's sets are
// derived.
func (p *Pipeline) ingestParticipants(ctx context.Context, participants []startgg.Participant) error {
	for _, participant := range participants {
		if participant.Player == nil || participant.Player.ID == "" {
			p.logger.Debug().Msg("Participant without player identity skipped")
			continue
		}
		playerID := string(participant.Player.ID)

		if err := p.resolver.RecordPlayer(ctx, playerID, participant.Player.GamerTag); err != nil {
			return err
		}

		for _, entrant := range participant.Entrants {
			if entrant == nil || entrant.ID == "" {
				continue
			}
			if err := p.resolver.MapEntrant(ctx, string(entrant.ID), playerID); err != nil {
				return err
			}
			if entrant.Standing != nil && entrant.Standing.IsFinal &&
				entrant.Standing.Placement != nil && entrant.Event != nil && entrant.Event.ID != "" {
				if err := p.sink.InsertStanding(ctx, playerID, string(entrant.Event.ID), *entrant.Standing.Placement); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// chunk splits ids into batches of at most size.
func chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
