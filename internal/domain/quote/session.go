package quote

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/user"
)

var (
	ErrIDRequired       = errors.New("quote: session id is required")
	ErrNoInventory      = errors.New("quote: no bookable room types for the stay")
	ErrSessionNotFound  = errors.New("quote: session not found")
	ErrSessionExpired   = errors.New("quote: session expired")
)

type SessionID string

// Session snapshots the bookable inventory for one search and carries the
// traveler's selection state while the booking screen is open. Sessions are
// transient; they die on TTL expiry or successful payment handoff.
type Session struct {
	ID         SessionID
	UserID     user.ID
	PropertyID string
	Stay       daterange.DateRange
	RoomTypes  map[rateplan.RoomTypeID]*rateplan.RoomType
	Selections booking.Selections
	AgentRate  *pricing.AgentRate
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
	Version    int64
}

type CreateParams struct {
	ID         SessionID
	UserID     user.ID
	PropertyID string
	Stay       daterange.DateRange
	RoomTypes  []*rateplan.RoomType
	AgentRate  *pricing.AgentRate
	TTL        time.Duration
	Now        time.Time
}

// NewSession filters the snapshot down to bookable room types and opens an
// empty selection map over them.
func NewSession(params CreateParams) (*Session, error) {
	if params.ID == "" {
		return nil, ErrIDRequired
	}
	if err := params.Stay.Validate(); err != nil {
		return nil, err
	}
	bookable := rateplan.BookableForStay(params.RoomTypes, params.Stay)
	if len(bookable) == 0 {
		return nil, ErrNoInventory
	}
	if params.AgentRate != nil {
		if err := params.AgentRate.Validate(); err != nil {
			return nil, err
		}
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	types := make(map[rateplan.RoomTypeID]*rateplan.RoomType, len(bookable))
	for _, rt := range bookable {
		types[rt.ID] = rt.Copy()
	}
	return &Session{
		ID:         params.ID,
		UserID:     params.UserID,
		PropertyID: params.PropertyID,
		Stay:       params.Stay,
		RoomTypes:  types,
		Selections: booking.Selections{},
		AgentRate:  params.AgentRate,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

// Apply runs one selection action through the reducer. Rejections leave the
// stored state untouched.
func (s *Session) Apply(action booking.Action, now time.Time) error {
	next, err := booking.Reduce(s.Selections, s.inventory(), action)
	if err != nil {
		return err
	}
	s.Selections = next
	if now.IsZero() {
		now = time.Now()
	}
	s.UpdatedAt = now.UTC()
	return nil
}

// Items pairs every selection holding rooms with its room-type snapshot.
func (s *Session) Items() []pricing.Item {
	var items []pricing.Item
	for id, sel := range s.Selections {
		rt, ok := s.RoomTypes[id]
		if !ok || sel.Rooms <= 0 {
			continue
		}
		items = append(items, pricing.Item{RoomType: rt, Selection: sel})
	}
	return items
}

// Totals aggregates the current selection set with the session's agent rate.
func (s *Session) Totals() (pricing.Quote, error) {
	return pricing.Aggregate(s.Items(), s.AgentRate)
}

func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

func (s *Session) inventory() booking.Inventory {
	return booking.MapInventory(s.RoomTypes)
}

type Repository interface {
	ByID(ctx context.Context, id SessionID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id SessionID) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
