package startgg

import "encoding/json"

// ID is a start.gg object identifier. The API serializes IDs inconsistently
// (numbers for tournaments and sets, strings elsewhere), so both encodings
// are accepted.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(b)
	return nil
}

// PageInfo carries pagination metadata for a connection.
type PageInfo struct {
	TotalPages int `json:"totalPages"`
}

// Tournament is one remote tournament with its events.
type Tournament struct {
	ID      ID       `json:"id"`
	Name    string   `json:"name"`
	StartAt *int64   `json:"startAt"`
	Events  []*Event `json:"events"`
}

// Event belongs to exactly one tournament.
type Event struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Player is a durable identity.
type Player struct {
	ID       ID     `json:"id"`
	GamerTag string `json:"gamerTag"`
}

// Participant is a player's registration within one tournament. It may own
// several entrants, one per event entered.
type Participant struct {
	Player   *Player    `json:"player"`
	Entrants []*Entrant `json:"entrants"`
}

// Entrant is a tournament-and-event-scoped participant slot. Entrant IDs are
// ephemeral resolution keys, never persisted standalone.
type Entrant struct {
	ID       ID             `json:"id"`
	Event    *Event         `json:"event"`
	Standing *EventStanding `json:"standing"`
}

// EventStanding is an entrant's final rank within one event.
type EventStanding struct {
	IsFinal   bool `json:"isFinal"`
	Placement *int `json:"placement"`
}

// Set is a single match between two entrants within an event. EventID is
// attached during response flattening; the raw node does not carry it.
type Set struct {
	ID          ID
	EventID     ID
	CompletedAt *int64
	StartedAt   *int64
	Slots       []*Slot
}

// Slot is one side of a set.
type Slot struct {
	Entrant  *SlotEntrant  `json:"entrant"`
	Standing *SlotStanding `json:"standing"`
}

// SlotEntrant references the entrant occupying a slot.
type SlotEntrant struct {
	ID ID `json:"id"`
}

// SlotStanding is a set-scoped result for one slot. Placement 1 denotes the
// winning side. Score is the games won; a negative value is the service's
// sentinel for a disqualification or unrecorded score.
type SlotStanding struct {
	Placement *int       `json:"placement"`
	Stats     *SlotStats `json:"stats"`
}

// SlotStats wraps the score container.
type SlotStats struct {
	Score *SlotScore `json:"score"`
}

// SlotScore carries the numeric score value, absent when none was recorded.
type SlotScore struct {
	Value *float64 `json:"value"`
}
