package startgg

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected ID
	}{
		{"number", `123456`, "123456"},
		{"string", `"abc-789"`, "abc-789"},
		{"numeric_string", `"42"`, "42"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.payload), &id); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.payload, err)
			}
			if id != tt.expected {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.payload, id, tt.expected)
			}
		})
	}
}

func TestIDUnmarshalInStruct(t *testing.T) {
	var tournament Tournament
	payload := `{"id": 98765, "name": "Tuesday Trials 12"}`
	if err := json.Unmarshal([]byte(payload), &tournament); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if tournament.ID != "98765" {
		t.Errorf("ID = %q, want %q", tournament.ID, "98765")
	}
}
