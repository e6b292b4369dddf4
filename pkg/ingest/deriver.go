package ingest

import (
	"github.com/yeahokpal/tuesday-trials-grid/pkg/startgg"
)

// Result is one derived set outcome ready for persistence.
type Result struct {
	SetID       string
	EventID     string
	WinnerID    string
	LoserID     string
	WinnerScore float64
	LoserScore  float64

	// Duration is completion minus start in seconds, nil when the set has
	// no recorded start time. Unknown is distinct from zero.
	Duration *int64
}

// DeriveSet derives a win/loss record from one raw set.
//
// A result is produced only when every required value is present: both
// slots, both placements, both entrant IDs, both resolved player IDs, both
// scores, and the completion timestamp. Anything missing means the remote
// data is incomplete, which is expected and skipped silently rather than
// treated as an error.
//
// The slot with the strictly lower placement wins (set-slot standings place
// the winning side at 1); a placement tie is ambiguous and skipped. A
// negative loser score is the service's sentinel for a disqualification or
// unrecorded score, and such sets are excluded entirely.
func DeriveSet(set startgg.Set, resolve func(entrantID string) (string, bool)) (Result, bool) {
	if set.CompletedAt == nil {
		return Result{}, false
	}
	if len(set.Slots) < 2 || set.Slots[0] == nil || set.Slots[1] == nil {
		return Result{}, false
	}

	slot1, slot2 := set.Slots[0], set.Slots[1]
	placement1, ok := slotPlacement(slot1)
	if !ok {
		return Result{}, false
	}
	placement2, ok := slotPlacement(slot2)
	if !ok {
		return Result{}, false
	}

	var winner, loser *startgg.Slot
	switch {
	case placement1 < placement2:
		winner, loser = slot1, slot2
	case placement2 < placement1:
		winner, loser = slot2, slot1
	default:
		return Result{}, false
	}

	winnerEntrant, ok := slotEntrant(winner)
	if !ok {
		return Result{}, false
	}
	loserEntrant, ok := slotEntrant(loser)
	if !ok {
		return Result{}, false
	}

	winnerPlayer, ok := resolve(winnerEntrant)
	if !ok {
		return Result{}, false
	}
	loserPlayer, ok := resolve(loserEntrant)
	if !ok {
		return Result{}, false
	}

	winnerScore, ok := slotScore(winner)
	if !ok {
		return Result{}, false
	}
	loserScore, ok := slotScore(loser)
	if !ok {
		return Result{}, false
	}
	if loserScore < 0 {
		return Result{}, false
	}

	result := Result{
		SetID:       string(set.ID),
		EventID:     string(set.EventID),
		WinnerID:    winnerPlayer,
		LoserID:     loserPlayer,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
	}
	if set.StartedAt != nil {
		duration := *set.CompletedAt - *set.StartedAt
		result.Duration = &duration
	}
	return result, true
}

func slotPlacement(slot *startgg.Slot) (int, bool) {
	if slot.Standing == nil || slot.Standing.Placement == nil {
		return 0, false
	}
	return *slot.Standing.Placement, true
}

func slotEntrant(slot *startgg.Slot) (string, bool) {
	if slot.Entrant == nil || slot.Entrant.ID == "" {
		return "", false
	}
	return string(slot.Entrant.ID), true
}

func slotScore(slot *startgg.Slot) (float64, bool) {
	if slot.Standing == nil || slot.Standing.Stats == nil ||
		slot.Standing.Stats.Score == nil || slot.Standing.Stats.Score.Value == nil {
		return 0, false
	}
	return *slot.Standing.Stats.Score.Value, true
}
