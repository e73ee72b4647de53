package database

import (
	"time"

	"github.com/google/uuid"
)

// Change kinds recorded per observation
const (
	ChangeNew     = "new"
	ChangeRemoved = "removed"
)

// RunRecord is one pneaudit invocation as stored in pne_runs.
type RunRecord struct {
	RunID        uuid.UUID
	Mode         string
	Host         string
	EnabledOnly  bool
	StartedAt    time.Time
	FinishedAt   time.Time
	FlaggedCount int
	Observations []Observation
}

// Observation is an account that entered or left the flagged set during a run.
type Observation struct {
	UserPrincipalName string
	DisplayName       string
	SAMAccountName    string
	LastLogon         *time.Time
	Change            string
}

func (r *RunRecord) count(change string) int {
	n := 0
	for _, o := range r.Observations {
		if o.Change == change {
			n++
		}
	}
	return n
}
