package utility

import (
	"fmt"

	"github.com/google/uuid"
)

type EpisodeID = uuid.UUID

// NewEpisodeID returns a time-ordered id so stored episodes sort by start time.
func NewEpisodeID() EpisodeID {
	return uuid.Must(uuid.NewV7())
}

func ParseEpisodeID(s string) (EpisodeID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid episode id %q: %w", s, err)
	}
	return id, nil
}
