package cache

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{
			name:     "no_variables",
			key:      Key{Operation: "tournaments"},
			expected: "startgg:tournaments",
		},
		{
			name: "variables_sorted",
			key: Key{
				Operation: "participants",
				Variables: map[string]any{"perPage": 60, "id": "12345", "page": 2},
			},
			expected: "startgg:participants:id=12345:page=2:perPage=60",
		},
		{
			name: "slice_variable",
			key: Key{
				Operation: "sets",
				Variables: map[string]any{"events": []string{"10", "11"}, "page": 1},
			},
			expected: "startgg:sets:events=[10 11]:page=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKeyStringDeterministic(t *testing.T) {
	key := Key{
		Operation: "sets",
		Variables: map[string]any{"id": "t-1", "page": 3, "perPage": 60, "events": "ev-1"},
	}

	first := key.String()
	for i := 0; i < 50; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() = %q on iteration %d, want stable %q", got, i, first)
		}
	}
}

func TestKeysDistinguishOperations(t *testing.T) {
	vars := map[string]any{"page": 1}
	a := Key{Operation: "tournaments", Variables: vars}
	b := Key{Operation: "participants", Variables: vars}

	if a.String() == b.String() {
		t.Error("Different operations must yield different keys")
	}
}
