package quote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainagentrate "staybook/internal/domain/agentrate"
	"staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainquote "staybook/internal/domain/quote"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

var ErrNotSessionOwner = errors.New("quote: session belongs to another user")

type Service struct {
	Sessions   domainquote.Repository
	RoomTypes  domainrateplan.Repository
	AgentRates domainagentrate.Repository
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type StartParams struct {
	UserID     domainuser.ID
	PropertyID string
	CheckIn    string
	CheckOut   string
	// AsAgent attaches the caller's assigned rate to the session. Only
	// honored for callers holding the agent role.
	AsAgent bool
}

// Start snapshots bookable inventory for the stay and opens a selection
// session over it.
func (s *Service) Start(ctx context.Context, params StartParams) (*domainquote.Session, error) {
	stay, err := daterange.Parse(params.CheckIn, params.CheckOut)
	if err != nil {
		return nil, err
	}
	roomTypes, err := s.RoomTypes.ByProperty(ctx, params.PropertyID)
	if err != nil {
		return nil, err
	}
	var rate *domainpricing.AgentRate
	if params.AsAgent && s.AgentRates != nil {
		assignment, err := s.AgentRates.ByAgent(ctx, params.UserID)
		if err != nil && !errors.Is(err, domainagentrate.ErrNotFound) {
			return nil, err
		}
		if assignment != nil {
			r := assignment.Rate
			rate = &r
		}
	}
	session, err := domainquote.NewSession(domainquote.CreateParams{
		ID:         domainquote.SessionID(uuid.NewString()),
		UserID:     params.UserID,
		PropertyID: params.PropertyID,
		Stay:       stay,
		RoomTypes:  roomTypes,
		AgentRate:  rate,
		TTL:        s.SessionTTL,
		Now:        time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("quote session opened",
			"session_id", session.ID, "user_id", params.UserID,
			"property_id", params.PropertyID, "room_types", len(session.RoomTypes),
			"agent_rate", rate != nil)
	}
	return session, nil
}

// Apply runs one selection action against the session and persists the result.
// A capacity rejection surfaces as the typed error and leaves the stored
// session untouched.
func (s *Service) Apply(ctx context.Context, userID domainuser.ID, id domainquote.SessionID, action booking.Action) (*domainquote.Session, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := session.Apply(action, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, userID domainuser.ID, id domainquote.SessionID) (*domainquote.Session, error) {
	return s.load(ctx, userID, id)
}

// Totals aggregates the session's current selections.
func (s *Service) Totals(ctx context.Context, userID domainuser.ID, id domainquote.SessionID) (*domainquote.Session, domainpricing.Quote, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, domainpricing.Quote{}, err
	}
	totals, err := session.Totals()
	if err != nil {
		return nil, domainpricing.Quote{}, err
	}
	return session, totals, nil
}

// PruneExpired drops sessions past their TTL. Run periodically.
func (s *Service) PruneExpired(ctx context.Context) (int, error) {
	n, err := s.Sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("expired quote sessions pruned", "count", n)
	}
	return n, nil
}

func (s *Service) load(ctx context.Context, userID domainuser.ID, id domainquote.SessionID) (*domainquote.Session, error) {
	session, err := s.Sessions.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.Expired(time.Now()) {
		_ = s.Sessions.Delete(ctx, id)
		return nil, domainquote.ErrSessionExpired
	}
	return session, nil
}
