package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainagentrate "staybook/internal/domain/agentrate"
	domainauth "staybook/internal/domain/auth"
	domainpricing "staybook/internal/domain/pricing"
	domainuser "staybook/internal/domain/user"
)

var ErrNotAnAgent = errors.New("admin: user does not hold the agent role")

type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	AgentRates domainagentrate.Repository
	Logger     *slog.Logger
}

func (s *Service) ListUsers(ctx context.Context) ([]*domainuser.User, error) {
	return s.Users.List(ctx)
}

// SetBlocked flips a user's blocked flag. Blocking also kills every live
// session so the user is cut off immediately, not at next token resolve.
func (s *Service) SetBlocked(ctx context.Context, userID domainuser.ID, blocked bool) (*domainuser.User, error) {
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if blocked {
		user.Block(now)
	} else {
		user.Unblock(now)
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	if blocked && s.Sessions != nil {
		if err := s.Sessions.DeleteByUser(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("user moderation applied", "user_id", user.ID, "blocked", blocked)
	}
	return user, nil
}

// AssignAgentRate grants or replaces an agent's channel discount.
func (s *Service) AssignAgentRate(ctx context.Context, agentID, grantedBy domainuser.ID, rate domainpricing.AgentRate) (*domainagentrate.Assignment, error) {
	agent, err := s.Users.ByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.HasRole(domainuser.RoleAgent) {
		return nil, ErrNotAnAgent
	}
	assignment, err := domainagentrate.NewAssignment(agentID, grantedBy, rate, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.AgentRates.Save(ctx, assignment); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("agent rate assigned", "agent_id", agentID, "type", rate.Type, "granted_by", grantedBy)
	}
	return assignment, nil
}

func (s *Service) RevokeAgentRate(ctx context.Context, agentID domainuser.ID) error {
	if err := s.AgentRates.Delete(ctx, agentID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("agent rate revoked", "agent_id", agentID)
	}
	return nil
}

func (s *Service) AgentRate(ctx context.Context, agentID domainuser.ID) (*domainagentrate.Assignment, error) {
	return s.AgentRates.ByAgent(ctx, agentID)
}
