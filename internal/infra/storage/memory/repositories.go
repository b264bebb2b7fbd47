package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainagentrate "staybook/internal/domain/agentrate"
	domainorder "staybook/internal/domain/order"
	domainquote "staybook/internal/domain/quote"
	domainrateplan "staybook/internal/domain/rateplan"
	domainuser "staybook/internal/domain/user"
)

// RoomTypeRepository is an in-memory implementation for demo and test use.
type RoomTypeRepository struct {
	mu    sync.RWMutex
	items map[domainrateplan.RoomTypeID]*domainrateplan.RoomType
}

func NewRoomTypeRepository() *RoomTypeRepository {
	return &RoomTypeRepository{items: make(map[domainrateplan.RoomTypeID]*domainrateplan.RoomType)}
}

func (r *RoomTypeRepository) ByID(ctx context.Context, id domainrateplan.RoomTypeID) (*domainrateplan.RoomType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.items[id]
	if !ok {
		return nil, domainrateplan.ErrRoomTypeNotFound
	}
	return rt.Copy(), nil
}

func (r *RoomTypeRepository) ByProperty(ctx context.Context, propertyID string) ([]*domainrateplan.RoomType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainrateplan.RoomType
	for _, rt := range r.items {
		if rt.PropertyID == propertyID {
			out = append(out, rt.Copy())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoomTypeRepository) Save(ctx context.Context, rt *domainrateplan.RoomType) error {
	if rt == nil {
		return domainrateplan.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := rt.Copy()
	stored.Version++
	r.items[rt.ID] = stored
	rt.Version = stored.Version
	return nil
}

// QuoteSessionRepository keeps quote sessions in memory with TTL pruning.
type QuoteSessionRepository struct {
	mu    sync.RWMutex
	items map[domainquote.SessionID]*domainquote.Session
}

func NewQuoteSessionRepository() *QuoteSessionRepository {
	return &QuoteSessionRepository{items: make(map[domainquote.SessionID]*domainquote.Session)}
}

func (r *QuoteSessionRepository) ByID(ctx context.Context, id domainquote.SessionID) (*domainquote.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, domainquote.ErrSessionNotFound
	}
	return cloneQuoteSession(s), nil
}

func (r *QuoteSessionRepository) Save(ctx context.Context, session *domainquote.Session) error {
	if session == nil {
		return domainquote.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneQuoteSession(session)
	stored.Version++
	r.items[session.ID] = stored
	session.Version = stored.Version
	return nil
}

func (r *QuoteSessionRepository) Delete(ctx context.Context, id domainquote.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *QuoteSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for id, s := range r.items {
		if !s.ExpiresAt.After(before.UTC()) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func cloneQuoteSession(s *domainquote.Session) *domainquote.Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.RoomTypes = make(map[domainrateplan.RoomTypeID]*domainrateplan.RoomType, len(s.RoomTypes))
	for id, rt := range s.RoomTypes {
		clone.RoomTypes[id] = rt.Copy()
	}
	clone.Selections = s.Selections.Copy()
	if s.AgentRate != nil {
		rate := *s.AgentRate
		clone.AgentRate = &rate
	}
	return &clone
}

// OrderRepository keeps payment orders in memory.
type OrderRepository struct {
	mu    sync.RWMutex
	items map[domainorder.OrderID]*domainorder.PaymentOrder
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{items: make(map[domainorder.OrderID]*domainorder.PaymentOrder)}
}

func (r *OrderRepository) ByID(ctx context.Context, id domainorder.OrderID) (*domainorder.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, domainorder.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainorder.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainorder.PaymentOrder
	for _, o := range r.items {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) Save(ctx context.Context, o *domainorder.PaymentOrder) error {
	if o == nil {
		return domainorder.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneOrder(o)
	stored.Version++
	r.items[o.ID] = stored
	o.Version = stored.Version
	return nil
}

func cloneOrder(o *domainorder.PaymentOrder) *domainorder.PaymentOrder {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = make([]domainorder.LineItem, len(o.Lines))
	for i, line := range o.Lines {
		copied := line
		copied.RoomIDs = append([]string(nil), line.RoomIDs...)
		copied.BlockDates = append([]string(nil), line.BlockDates...)
		clone.Lines[i] = copied
	}
	clone.ClearEvents()
	return &clone
}

// AgentRateRepository keeps agent discount assignments in memory.
type AgentRateRepository struct {
	mu    sync.RWMutex
	items map[domainuser.ID]*domainagentrate.Assignment
}

func NewAgentRateRepository() *AgentRateRepository {
	return &AgentRateRepository{items: make(map[domainuser.ID]*domainagentrate.Assignment)}
}

func (r *AgentRateRepository) ByAgent(ctx context.Context, agentID domainuser.ID) (*domainagentrate.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[agentID]
	if !ok {
		return nil, domainagentrate.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *AgentRateRepository) Save(ctx context.Context, a *domainagentrate.Assignment) error {
	if a == nil {
		return domainagentrate.ErrAgentRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *a
	r.items[a.AgentID] = &clone
	return nil
}

func (r *AgentRateRepository) Delete(ctx context.Context, agentID domainuser.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, agentID)
	return nil
}

var (
	_ domainrateplan.Repository  = (*RoomTypeRepository)(nil)
	_ domainquote.Repository     = (*QuoteSessionRepository)(nil)
	_ domainorder.Repository     = (*OrderRepository)(nil)
	_ domainagentrate.Repository = (*AgentRateRepository)(nil)
)
