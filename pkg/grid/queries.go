package grid

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/BurntSushi/toml"
)

// Var is a named substitution source for query templates. Values come either
// from a literal list or from a single-column SQL query; Labels align with
// Values by position and default to the value itself when absent.
type Var struct {
	Var    string   `toml:"var" json:"var"`
	Query  string   `toml:"query,omitempty" json:"query,omitempty"`
	Values []string `toml:"values,omitempty" json:"values,omitempty"`
	Labels []string `toml:"labels,omitempty" json:"labels,omitempty"`
}

// Query is one candidate grid category: a display label, a single-column SQL
// query selecting matching player tags, and a selection weight. Occurrences
// of "[name]" in Label and Query are replaced during selection, either from
// Vars (independent draws) or from Options (a draw of one aligned tuple).
type Query struct {
	Label   string     `toml:"label" json:"label"`
	Query   string     `toml:"query" json:"query"`
	Odds    int        `toml:"odds" json:"odds"`
	Vars    []string   `toml:"vars,omitempty" json:"vars,omitempty"`
	Options [][]string `toml:"options,omitempty" json:"options,omitempty"`
}

// QueryFile is the TOML document holding the category pool.
type QueryFile struct {
	Queries []Query `toml:"queries"`
	Vars    []Var   `toml:"vars"`
}

// LoadQueryFile reads and validates a TOML query file.
func LoadQueryFile(path string) (*QueryFile, error) {
	var file QueryFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(file.Queries) == 0 {
		return nil, fmt.Errorf("%s: no queries defined", path)
	}
	for _, q := range file.Queries {
		if q.Odds <= 0 {
			return nil, fmt.Errorf("%s: query %q: odds must be positive", path, q.Label)
		}
	}
	return &file, nil
}

// findVar returns the var definition by name.
func (f *QueryFile) findVar(name string) (Var, bool) {
	for _, v := range f.Vars {
		if v.Var == name {
			return v, true
		}
	}
	return Var{}, false
}

// pickWeighted draws one query from the pool with probability proportional
// to its odds.
func pickWeighted(queries []Query, rng *rand.Rand) Query {
	max := 0
	for _, q := range queries {
		max += q.Odds
	}
	target := rng.Intn(max)
	for _, q := range queries {
		target -= q.Odds
		if target < 0 {
			return q
		}
	}
	return queries[len(queries)-1]
}

// substitution is one resolved variable: the value spliced into the SQL and
// the label shown to players.
type substitution struct {
	value string
	label string
}

// resolveVar draws one value for a named var, loading SQL-sourced value lists
// on demand.
func (b *Builder) resolveVar(ctx context.Context, name string) (substitution, error) {
	v, ok := b.file.findVar(name)
	if !ok {
		return substitution{}, fmt.Errorf("var %q not defined", name)
	}
	values := v.Values
	if len(values) == 0 {
		if v.Query == "" {
			return substitution{}, fmt.Errorf("var %q has neither values nor query", name)
		}
		var err error
		values, err = b.db.QueryColumn(ctx, v.Query)
		if err != nil {
			return substitution{}, fmt.Errorf("var %q: %w", name, err)
		}
		if len(values) == 0 {
			return substitution{}, fmt.Errorf("var %q: query returned no values", name)
		}
	}
	idx := b.rng.Intn(len(values))
	sub := substitution{value: values[idx], label: values[idx]}
	if idx < len(v.Labels) && v.Labels[idx] != "" {
		sub.label = v.Labels[idx]
	}
	return sub, nil
}

// instantiate returns a copy of q with every "[name]" placeholder replaced.
// Options, when present, win over independent var draws: one option tuple is
// chosen and its entries are applied to q.Vars positionally.
func (b *Builder) instantiate(ctx context.Context, q Query) (Query, error) {
	if len(q.Vars) == 0 {
		return q, nil
	}

	subs := make([]substitution, 0, len(q.Vars))
	if len(q.Options) > 0 {
		option := q.Options[b.rng.Intn(len(q.Options))]
		if len(option) != len(q.Vars) {
			return Query{}, fmt.Errorf("query %q: option arity %d != vars %d", q.Label, len(option), len(q.Vars))
		}
		for _, value := range option {
			subs = append(subs, substitution{value: value, label: value})
		}
	} else {
		for _, name := range q.Vars {
			sub, err := b.resolveVar(ctx, name)
			if err != nil {
				return Query{}, fmt.Errorf("query %q: %w", q.Label, err)
			}
			subs = append(subs, sub)
		}
	}

	for i, name := range q.Vars {
		placeholder := "[" + name + "]"
		q.Query = strings.ReplaceAll(q.Query, placeholder, subs[i].value)
		q.Label = strings.ReplaceAll(q.Label, placeholder, subs[i].label)
	}
	q.Vars = nil
	q.Options = nil
	return q, nil
}
