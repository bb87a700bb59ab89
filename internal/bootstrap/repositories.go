package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/FateProtocol_Go/internal/database/postgres"
)

// Repositories holds all repository implementations used by the application.
type Repositories struct {
	Matches   *postgres.MatchRepository
	Proposals *postgres.ProposalRepository
	Config    *postgres.ConfigRepository
	EventLog  *postgres.EventLogRepository
}

// InitializeRepositories creates the Postgres repositories over one pool
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Matches:   postgres.NewMatchRepository(dbPool),
		Proposals: postgres.NewProposalRepository(dbPool),
		Config:    postgres.NewConfigRepository(dbPool),
		EventLog:  postgres.NewEventLogRepository(dbPool),
	}
}
