package agentrate

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/user"
)

var (
	ErrAgentRequired = errors.New("agentrate: agent id is required")
	ErrNotFound      = errors.New("agentrate: no rate assigned")
)

// Assignment grants one agent a channel discount. Admins manage these; the
// rate attaches to a quote session only when the caller holds the agent role.
type Assignment struct {
	AgentID   user.ID
	Rate      pricing.AgentRate
	GrantedBy user.ID
	UpdatedAt time.Time
}

func NewAssignment(agentID, grantedBy user.ID, rate pricing.AgentRate, now time.Time) (*Assignment, error) {
	if strings.TrimSpace(string(agentID)) == "" {
		return nil, ErrAgentRequired
	}
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now()
	}
	return &Assignment{
		AgentID:   agentID,
		Rate:      rate,
		GrantedBy: grantedBy,
		UpdatedAt: now.UTC(),
	}, nil
}

type Repository interface {
	ByAgent(ctx context.Context, agentID user.ID) (*Assignment, error)
	Save(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, agentID user.ID) error
}
