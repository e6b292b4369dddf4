// Package storage persists the relational tournament snapshot in SQLite.
//
// The snapshot is rebuilt by each ingestion run: Tournament, Event and
// Standing rows are replaced wholesale, Player rows accumulate across runs,
// and SetResult rows may transiently reference entrant IDs until identity
// resolution rewrites them to durable player IDs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/yeahokpal/tuesday-trials-grid/pkg/storage/migrations"
)

// Store persists the tournament snapshot in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite snapshot store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InsertTournament writes one tournament row, replacing any previous snapshot
// of the same tournament.
func (s *Store) InsertTournament(ctx context.Context, id, name string, startAt int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("tournament id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO Tournament (id, name, start_at) VALUES (?, ?, ?)`,
		id, name, startAt,
	)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	return nil
}

// InsertEvent writes one event row.
func (s *Store) InsertEvent(ctx context.Context, id, name, tournamentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("event id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO Event (id, name, tournament_id) VALUES (?, ?, ?)`,
		id, name, tournamentID,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// UpsertPlayer inserts a player identity, a no-op when the ID is already
// present. Calling it twice with the same ID is observably equivalent to
// calling it once.
func (s *Store) UpsertPlayer(ctx context.Context, id, gamerTag string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("player id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO Player (id, gamer_tag) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		id, gamerTag,
	)
	if err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}

// InsertStanding writes a player's final placement within one event.
func (s *Store) InsertStanding(ctx context.Context, playerID, eventID string, placement int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO Standing (player_id, event_id, placement) VALUES (?, ?, ?)`,
		playerID, eventID, placement,
	)
	if err != nil {
		return fmt.Errorf("insert standing: %w", err)
	}
	return nil
}

// InsertSetResult writes one derived set outcome. winnerID and loserID may
// still be entrant IDs at insert time; RewriteSetResultKey corrects them in
// place once the identity map covers them.
func (s *Store) InsertSetResult(ctx context.Context, setID, eventID, winnerID, loserID string, winnerScore, loserScore float64, duration *int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if setID == "" {
		return fmt.Errorf("set id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO SetResult (id, event_id, winner_id, loser_id, winner_score, loser_score, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		setID, eventID, winnerID, loserID, winnerScore, loserScore, duration,
	)
	if err != nil {
		return fmt.Errorf("insert set result: %w", err)
	}
	return nil
}

// RewriteSetResultKey replaces oldKey with playerID in the winner and loser
// columns of every set result referencing it. Idempotent: once no row carries
// oldKey the call changes nothing, so it is safe in either order relative to
// the insert that references oldKey.
func (s *Store) RewriteSetResultKey(ctx context.Context, oldKey, playerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE SetResult SET winner_id = ? WHERE winner_id = ?`, playerID, oldKey); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("rewrite winner key: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE SetResult SET loser_id = ? WHERE loser_id = ?`, playerID, oldKey); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("rewrite loser key: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rewrite: %w", err)
	}
	return nil
}

// SetResult is one persisted set outcome.
type SetResult struct {
	SetID       string
	EventID     string
	WinnerID    string
	LoserID     string
	WinnerScore float64
	LoserScore  float64
	Duration    *int64
}

// SetResults returns every persisted set result ordered by set ID.
func (s *Store) SetResults(ctx context.Context) ([]SetResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, event_id, winner_id, loser_id, winner_score, loser_score, duration
		   FROM SetResult ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list set results: %w", err)
	}
	defer rows.Close()

	var results []SetResult
	for rows.Next() {
		var r SetResult
		var duration sql.NullInt64
		if err := rows.Scan(&r.SetID, &r.EventID, &r.WinnerID, &r.LoserID, &r.WinnerScore, &r.LoserScore, &duration); err != nil {
			return nil, fmt.Errorf("list set results: %w", err)
		}
		if duration.Valid {
			d := duration.Int64
			r.Duration = &d
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list set results: %w", err)
	}
	return results, nil
}

// QueryColumn runs a read-only query and returns its first column as strings.
// The grid generator feeds it both variable-source queries and cell queries
// from the TOML query file.
func (s *Store) QueryColumn(ctx context.Context, query string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query column: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("query column: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query column: %w", err)
	}
	return values, nil
}

// Intersect returns the values produced by both queries.
func (s *Store) Intersect(ctx context.Context, rowQuery, colQuery string) ([]string, error) {
	return s.QueryColumn(ctx, rowQuery+" INTERSECT "+colQuery)
}

// CountPlayers returns the number of stored player identities.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM Player`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}
