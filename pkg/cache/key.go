package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Key identifies one cached GraphQL response.
type Key struct {
	// Operation is the logical query name (e.g. "tournaments").
	Operation string

	// Variables are the query variables the response depends on.
	Variables map[string]any
}

// String generates a deterministic cache key string.
// Format: startgg:operation:var1=val1:var2=val2
//
// Example:
//
//	startgg:participants:id=12345:page=2:perPage=60
func (k Key) String() string {
	parts := []string{"startgg", k.Operation}

	// Add variables (sorted for determinism)
	if len(k.Variables) > 0 {
		names := make([]string, 0, len(k.Variables))
		for name := range k.Variables {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%v", name, k.Variables[name]))
		}
	}

	return strings.Join(parts, ":")
}
