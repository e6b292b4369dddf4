// Package grid builds 3x3 trivia grids from the ingested snapshot. Row and
// column categories are drawn from a TOML-defined pool by weighted random
// selection; each cell's answer list is the intersection of its row and
// column queries. A grid is only valid when all nine cells have at least one
// answer, so generation retries until one is found.
package grid

import (
	"context"
	"errors"
	"math/rand"
)

// ErrNoValidGrid is returned when no fully answerable grid was found within
// the attempt limit.
var ErrNoValidGrid = errors.New("no grid with all cells answerable")

const defaultMaxAttempts = 200

// Querier is the snapshot read surface the builder needs. *storage.Store
// satisfies it.
type Querier interface {
	QueryColumn(ctx context.Context, query string) ([]string, error)
	Intersect(ctx context.Context, rowQuery, colQuery string) ([]string, error)
}

// Grid is one playable puzzle: three row categories, three column categories,
// and the nine answer lists. Answers are indexed cell-by-cell with the row
// cycling fastest: cell i pairs rows[i%3] with columns[i/3].
type Grid struct {
	Rows    []Query     `json:"rows"`
	Columns []Query     `json:"columns"`
	Answers [9][]string `json:"answers"`
}

// Builder generates grids against one snapshot.
type Builder struct {
	file        *QueryFile
	db          Querier
	rng         *rand.Rand
	maxAttempts int
}

// Option configures a Builder.
type Option func(*Builder)

// WithRand sets the random source, primarily for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(b *Builder) { b.rng = rng }
}

// WithMaxAttempts caps how many candidate grids are tried before giving up.
func WithMaxAttempts(n int) Option {
	return func(b *Builder) { b.maxAttempts = n }
}

// NewBuilder creates a grid builder over the given query pool and snapshot.
func NewBuilder(file *QueryFile, db Querier, opts ...Option) *Builder {
	b := &Builder{
		file:        file,
		db:          db,
		rng:         rand.New(rand.NewSource(rand.Int63())),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build generates one grid, retrying candidates until every cell has at
// least one answer.
func (b *Builder) Build(ctx context.Context) (*Grid, error) {
	for attempt := 0; attempt < b.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		grid, err := b.candidate(ctx)
		if err != nil {
			return nil, err
		}
		if grid.complete() {
			return grid, nil
		}
	}
	return nil, ErrNoValidGrid
}

// candidate draws one grid and fills its answers.
func (b *Builder) candidate(ctx context.Context) (*Grid, error) {
	grid := &Grid{}
	var err error
	if grid.Rows, err = b.pick(ctx, 3); err != nil {
		return nil, err
	}
	if grid.Columns, err = b.pick(ctx, 3); err != nil {
		return nil, err
	}
	for i := range grid.Answers {
		row, col := grid.Rows[i%3], grid.Columns[i/3]
		answers, err := b.db.Intersect(ctx, row.Query, col.Query)
		if err != nil {
			return nil, err
		}
		grid.Answers[i] = answers
	}
	return grid, nil
}

// pick draws count instantiated queries from the pool.
func (b *Builder) pick(ctx context.Context, count int) ([]Query, error) {
	queries := make([]Query, 0, count)
	for len(queries) < count {
		q, err := b.instantiate(ctx, pickWeighted(b.file.Queries, b.rng))
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func (g *Grid) complete() bool {
	for _, answers := range g.Answers {
		if len(answers) == 0 {
			return false
		}
	}
	return true
}
