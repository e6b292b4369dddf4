package grid

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// fakeQuerier resolves query strings against canned result lists and
// computes intersections in memory.
type fakeQuerier struct {
	results map[string][]string
	calls   int
}

func (f *fakeQuerier) QueryColumn(ctx context.Context, query string) ([]string, error) {
	f.calls++
	return append([]string{}, f.results[query]...), nil
}

func (f *fakeQuerier) Intersect(ctx context.Context, rowQuery, colQuery string) ([]string, error) {
	f.calls++
	rowSet := make(map[string]struct{})
	for _, v := range f.results[rowQuery] {
		rowSet[v] = struct{}{}
	}
	var out []string
	for _, v := range f.results[colQuery] {
		if _, ok := rowSet[v]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func writeQueryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write query file: %v", err)
	}
	return path
}

func TestLoadQueryFile(t *testing.T) {
	path := writeQueryFile(t, `
[[queries]]
label = "Beat [tag]"
query = "SELECT tag FROM wins WHERE opponent = '[tag]'"
odds = 3
vars = ["tag"]

[[vars]]
var = "tag"
values = ["Axe", "Zain"]
labels = ["", "Zain (DK)"]
`)

	file, err := LoadQueryFile(path)
	if err != nil {
		t.Fatalf("LoadQueryFile failed: %v", err)
	}
	if len(file.Queries) != 1 || file.Queries[0].Odds != 3 {
		t.Errorf("Unexpected queries: %+v", file.Queries)
	}
	if v, ok := file.findVar("tag"); !ok || len(v.Values) != 2 {
		t.Errorf("Unexpected var: %+v", v)
	}
}

func TestLoadQueryFileRejectsBadOdds(t *testing.T) {
	path := writeQueryFile(t, `
[[queries]]
label = "Anyone"
query = "SELECT tag FROM players"
odds = 0
`)

	if _, err := LoadQueryFile(path); err == nil {
		t.Fatal("Expected error for non-positive odds")
	}
}

func TestLoadQueryFileRejectsEmptyPool(t *testing.T) {
	path := writeQueryFile(t, ``)
	if _, err := LoadQueryFile(path); err == nil {
		t.Fatal("Expected error for empty query pool")
	}
}

func TestPickWeightedRespectsOdds(t *testing.T) {
	queries := []Query{
		{Label: "common", Odds: 9},
		{Label: "rare", Odds: 1},
	}

	rng := seededRand()
	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		counts[pickWeighted(queries, rng).Label]++
	}

	if counts["common"] < 800 {
		t.Errorf("common picked %d/1000, want the large majority", counts["common"])
	}
	if counts["rare"] == 0 {
		t.Error("rare never picked in 1000 draws")
	}
}

func TestInstantiateSubstitutesLiteralVar(t *testing.T) {
	file := &QueryFile{
		Queries: []Query{{
			Label: "Beat [tag]",
			Query: "SELECT winner FROM sets WHERE loser = '[tag]'",
			Odds:  1,
			Vars:  []string{"tag"},
		}},
		Vars: []Var{{Var: "tag", Values: []string{"Axe"}, Labels: []string{"Axe (Pikachu)"}}},
	}
	b := NewBuilder(file, &fakeQuerier{}, WithRand(seededRand()))

	q, err := b.instantiate(context.Background(), file.Queries[0])
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if q.Query != "SELECT winner FROM sets WHERE loser = 'Axe'" {
		t.Errorf("Query = %q, substitution failed", q.Query)
	}
	if q.Label != "Beat Axe (Pikachu)" {
		t.Errorf("Label = %q, want the label override", q.Label)
	}
}

func TestInstantiateSQLSourcedVar(t *testing.T) {
	db := &fakeQuerier{results: map[string][]string{
		"SELECT tag FROM players": {"Zain"},
	}}
	file := &QueryFile{
		Queries: []Query{{
			Label: "Lost to [tag]",
			Query: "SELECT loser FROM sets WHERE winner = '[tag]'",
			Odds:  1,
			Vars:  []string{"tag"},
		}},
		Vars: []Var{{Var: "tag", Query: "SELECT tag FROM players"}},
	}
	b := NewBuilder(file, db, WithRand(seededRand()))

	q, err := b.instantiate(context.Background(), file.Queries[0])
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if q.Query != "SELECT loser FROM sets WHERE winner = 'Zain'" {
		t.Errorf("Query = %q, SQL-sourced substitution failed", q.Query)
	}
	// Without an explicit label the value itself is shown.
	if q.Label != "Lost to Zain" {
		t.Errorf("Label = %q, want value fallback", q.Label)
	}
}

func TestInstantiateOptionsWinOverVars(t *testing.T) {
	file := &QueryFile{
		Queries: []Query{{
			Label:   "Won a set [score]",
			Query:   "SELECT winner FROM sets WHERE ws = [ws] AND ls = [ls]",
			Odds:    1,
			Vars:    []string{"ws", "ls", "score"},
			Options: [][]string{{"3", "0", "3-0"}},
		}},
	}
	b := NewBuilder(file, &fakeQuerier{}, WithRand(seededRand()))

	q, err := b.instantiate(context.Background(), file.Queries[0])
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	if q.Query != "SELECT winner FROM sets WHERE ws = 3 AND ls = 0" {
		t.Errorf("Query = %q, option substitution failed", q.Query)
	}
	if q.Label != "Won a set 3-0" {
		t.Errorf("Label = %q, want 3-0 spliced in", q.Label)
	}
}

func TestInstantiateUnknownVar(t *testing.T) {
	file := &QueryFile{
		Queries: []Query{{
			Label: "[x]",
			Query: "[x]",
			Odds:  1,
			Vars:  []string{"x"},
		}},
	}
	b := NewBuilder(file, &fakeQuerier{}, WithRand(seededRand()))

	if _, err := b.instantiate(context.Background(), file.Queries[0]); err == nil {
		t.Fatal("Expected error for undefined var")
	}
}

func TestBuildAllCellsAnswerable(t *testing.T) {
	db := &fakeQuerier{results: map[string][]string{
		"q-a": {"Axe", "Zain", "Wizzrobe"},
		"q-b": {"Axe", "Zain"},
	}}
	file := &QueryFile{
		Queries: []Query{
			{Label: "A", Query: "q-a", Odds: 1},
			{Label: "B", Query: "q-b", Odds: 1},
		},
	}
	b := NewBuilder(file, db, WithRand(seededRand()))

	grid, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(grid.Rows) != 3 || len(grid.Columns) != 3 {
		t.Fatalf("Grid shape = %dx%d, want 3x3", len(grid.Rows), len(grid.Columns))
	}
	for i, answers := range grid.Answers {
		if len(answers) == 0 {
			t.Errorf("Cell %d has no answers", i)
		}
	}
}

func TestBuildRetriesUntilComplete(t *testing.T) {
	// Query "empty" intersects to nothing with everything, so any candidate
	// drawing it must be discarded and regenerated.
	db := &fakeQuerier{results: map[string][]string{
		"q-full":  {"Axe", "Zain"},
		"q-empty": {},
	}}
	file := &QueryFile{
		Queries: []Query{
			{Label: "full", Query: "q-full", Odds: 3},
			{Label: "empty", Query: "q-empty", Odds: 1},
		},
	}
	b := NewBuilder(file, db, WithRand(seededRand()), WithMaxAttempts(500))

	grid, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, q := range grid.Rows {
		if q.Label == "empty" {
			t.Error("Grid kept a category with no possible answers")
		}
	}
	for _, q := range grid.Columns {
		if q.Label == "empty" {
			t.Error("Grid kept a category with no possible answers")
		}
	}
}

func TestBuildGivesUpAfterMaxAttempts(t *testing.T) {
	db := &fakeQuerier{results: map[string][]string{"q-empty": {}}}
	file := &QueryFile{
		Queries: []Query{{Label: "empty", Query: "q-empty", Odds: 1}},
	}
	b := NewBuilder(file, db, WithRand(seededRand()), WithMaxAttempts(5))

	if _, err := b.Build(context.Background()); err != ErrNoValidGrid {
		t.Fatalf("Error = %v, want ErrNoValidGrid", err)
	}
}
