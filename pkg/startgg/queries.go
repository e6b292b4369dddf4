package startgg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yeahokpal/tuesday-trials-grid/pkg/pagination"
)

// The three logical queries of the ingestion pipeline. Each returns one page
// of items plus the declared total page count; pagination.FetchAll drives
// them page by page.

const tournamentsQuery = `
query IngestTournaments($page: Int, $name: String) {
  tournaments(query: { page: $page, perPage: 25, sort: startAt, filter: { name: $name, past: true } }) {
    pageInfo { totalPages }
    nodes {
      id
      name
      startAt
      events { id name }
    }
  }
}`

const participantsQuery = `
query IngestParticipants($id: ID, $page: Int, $perPage: Int) {
  tournament(id: $id) {
    participants(query: { page: $page, perPage: $perPage }) {
      pageInfo { totalPages }
      nodes {
        player { id gamerTag }
        entrants {
          id
          event { id }
          standing { isFinal placement }
        }
      }
    }
  }
}`

const setsQuery = `
query IngestSets($id: ID, $events: [ID], $page: Int, $perPage: Int) {
  tournament(id: $id) {
    events(filter: { ids: $events }) {
      id
      sets(page: $page, perPage: $perPage) {
        pageInfo { totalPages }
        nodes {
          id
          completedAt
          startedAt
          slots {
            entrant { id }
            standing { placement stats { score { value } } }
          }
        }
      }
    }
  }
}`

// Tournaments fetches one page of the tournament listing. The remote search
// term comes from the client configuration; the ingestion stage applies its
// own substring filter on the returned names.
func (c *Client) Tournaments(ctx context.Context, page int) (pagination.Page[Tournament], error) {
	variables := map[string]any{"page": page}
	if c.config.TournamentSearch != "" {
		variables["name"] = c.config.TournamentSearch
	}

	raw, err := c.Do(ctx, "tournaments", tournamentsQuery, variables)
	if err != nil {
		return pagination.Page[Tournament]{}, err
	}

	var data struct {
		Tournaments *struct {
			PageInfo *PageInfo `json:"pageInfo"`
			Nodes    []*struct {
				ID      ID       `json:"id"`
				Name    string   `json:"name"`
				StartAt *int64   `json:"startAt"`
				Events  []*Event `json:"events"`
			} `json:"nodes"`
		} `json:"tournaments"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return pagination.Page[Tournament]{}, fmt.Errorf("decode tournaments: %w", err)
	}
	if data.Tournaments == nil || data.Tournaments.Nodes == nil {
		return pagination.Page[Tournament]{}, nil
	}

	items := make([]Tournament, 0, len(data.Tournaments.Nodes))
	for _, node := range data.Tournaments.Nodes {
		if node == nil {
			continue
		}
		items = append(items, Tournament{
			ID:      node.ID,
			Name:    node.Name,
			StartAt: node.StartAt,
			Events:  node.Events,
		})
	}
	return pagination.Page[Tournament]{Items: items, TotalPages: totalPages(data.Tournaments.PageInfo)}, nil
}

// Participants fetches one page of a tournament's participant listing.
func (c *Client) Participants(ctx context.Context, tournamentID string, page, pageSize int) (pagination.Page[Participant], error) {
	raw, err := c.Do(ctx, "participants", participantsQuery, map[string]any{
		"id":      tournamentID,
		"page":    page,
		"perPage": pageSize,
	})
	if err != nil {
		return pagination.Page[Participant]{}, err
	}

	var data struct {
		Tournament *struct {
			Participants *struct {
				PageInfo *PageInfo      `json:"pageInfo"`
				Nodes    []*Participant `json:"nodes"`
			} `json:"participants"`
		} `json:"tournament"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return pagination.Page[Participant]{}, fmt.Errorf("decode participants: %w", err)
	}
	if data.Tournament == nil || data.Tournament.Participants == nil || data.Tournament.Participants.Nodes == nil {
		return pagination.Page[Participant]{}, nil
	}

	conn := data.Tournament.Participants
	items := make([]Participant, 0, len(conn.Nodes))
	for _, node := range conn.Nodes {
		if node == nil {
			continue
		}
		items = append(items, *node)
	}
	return pagination.Page[Participant]{Items: items, TotalPages: totalPages(conn.PageInfo)}, nil
}

// Sets fetches one page of the sets of an event batch. Items are flattened
// across the requested events with the owning event ID attached; the total
// page count is the maximum declared by any event in the batch.
func (c *Client) Sets(ctx context.Context, tournamentID string, eventIDs []string, page, pageSize int) (pagination.Page[Set], error) {
	raw, err := c.Do(ctx, "sets", setsQuery, map[string]any{
		"id":      tournamentID,
		"events":  eventIDs,
		"page":    page,
		"perPage": pageSize,
	})
	if err != nil {
		return pagination.Page[Set]{}, err
	}

	var data struct {
		Tournament *struct {
			Events []*struct {
				ID   ID `json:"id"`
				Sets *struct {
					PageInfo *PageInfo `json:"pageInfo"`
					Nodes    []*struct {
						ID          ID      `json:"id"`
						CompletedAt *int64  `json:"completedAt"`
						StartedAt   *int64  `json:"startedAt"`
						Slots       []*Slot `json:"slots"`
					} `json:"nodes"`
				} `json:"sets"`
			} `json:"events"`
		} `json:"tournament"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return pagination.Page[Set]{}, fmt.Errorf("decode sets: %w", err)
	}
	if data.Tournament == nil || data.Tournament.Events == nil {
		return pagination.Page[Set]{}, nil
	}

	pages := 0
	items := make([]Set, 0)
	for _, event := range data.Tournament.Events {
		if event == nil || event.Sets == nil {
			continue
		}
		if p := totalPages(event.Sets.PageInfo); p > pages {
			pages = p
		}
		for _, node := range event.Sets.Nodes {
			if node == nil {
				continue
			}
			items = append(items, Set{
				ID:          node.ID,
				EventID:     event.ID,
				CompletedAt: node.CompletedAt,
				StartedAt:   node.StartedAt,
				Slots:       node.Slots,
			})
		}
	}
	return pagination.Page[Set]{Items: items, TotalPages: pages}, nil
}

func totalPages(info *PageInfo) int {
	if info == nil {
		return 0
	}
	return info.TotalPages
}
