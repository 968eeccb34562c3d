package standingsservice

import (
	"context"
)

// Service defines the interface for the StandingsService.
type Service interface {
	// Attaches rounds, links opponents and scores one event.
	ComputeStandings(ctx context.Context, in EventInput) (StandingsOperationResult, error)
}

var _ Service = (*StandingsService)(nil)
