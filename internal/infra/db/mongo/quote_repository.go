package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainquote "staybook/internal/domain/quote"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

// QuoteSessionRepository persists quote sessions, inventory snapshot included,
// so a session survives process restarts until its TTL.
type QuoteSessionRepository struct {
	col *mongo.Collection
}

func NewQuoteSessionRepository(db *mongo.Database) *QuoteSessionRepository {
	col := db.Collection("quote_session")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "expires_at", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &QuoteSessionRepository{col: col}
}

func (r *QuoteSessionRepository) ByID(ctx context.Context, id domainquote.SessionID) (*domainquote.Session, error) {
	var doc quoteSessionDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainquote.ErrSessionNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *QuoteSessionRepository) Save(ctx context.Context, session *domainquote.Session) error {
	doc := newQuoteSessionDocument(session)
	filter := bson.M{"_id": doc.ID, "version": session.Version}
	doc.Version = session.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	session.Version = doc.Version
	return nil
}

func (r *QuoteSessionRepository) Delete(ctx context.Context, id domainquote.SessionID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func (r *QuoteSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": before.UTC()}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type extraGuestDocument struct {
	Type string `bson:"type"`
}

type selectionDocument struct {
	RoomTypeID  string               `bson:"room_type_id"`
	MealPlan    string               `bson:"meal_plan"`
	Guests      int                  `bson:"guests"`
	Children    int                  `bson:"children"`
	Rooms       int                  `bson:"rooms"`
	ExtraGuests []extraGuestDocument `bson:"extra_guests"`
}

type agentRateDocument struct {
	Type    string        `bson:"type"`
	Percent float64       `bson:"percent"`
	Flat    moneyDocument `bson:"flat"`
}

type quoteSessionDocument struct {
	ID         string              `bson:"_id"`
	UserID     string              `bson:"user_id"`
	PropertyID string              `bson:"property_id"`
	CheckIn    int64               `bson:"check_in"`
	CheckOut   int64               `bson:"check_out"`
	RoomTypes  []roomTypeDocument  `bson:"room_types"`
	Selections []selectionDocument `bson:"selections"`
	AgentRate  *agentRateDocument  `bson:"agent_rate,omitempty"`
	CreatedAt  int64               `bson:"created_at"`
	UpdatedAt  int64               `bson:"updated_at"`
	ExpiresAt  time.Time           `bson:"expires_at"`
	Version    int64               `bson:"version"`
}

func newQuoteSessionDocument(s *domainquote.Session) quoteSessionDocument {
	doc := quoteSessionDocument{
		ID:         string(s.ID),
		UserID:     string(s.UserID),
		PropertyID: s.PropertyID,
		CheckIn:    s.Stay.CheckIn.UnixMilli(),
		CheckOut:   s.Stay.CheckOut.UnixMilli(),
		CreatedAt:  s.CreatedAt.UnixMilli(),
		UpdatedAt:  s.UpdatedAt.UnixMilli(),
		ExpiresAt:  s.ExpiresAt.UTC(),
		Version:    s.Version,
	}
	for _, rt := range s.RoomTypes {
		doc.RoomTypes = append(doc.RoomTypes, newRoomTypeDocument(rt))
	}
	for _, sel := range s.Selections {
		entry := selectionDocument{
			RoomTypeID: string(sel.RoomTypeID),
			MealPlan:   string(sel.MealPlan),
			Guests:     sel.Guests,
			Children:   sel.Children,
			Rooms:      sel.Rooms,
		}
		for _, eg := range sel.ExtraGuests {
			entry.ExtraGuests = append(entry.ExtraGuests, extraGuestDocument{Type: string(eg.Type)})
		}
		doc.Selections = append(doc.Selections, entry)
	}
	if s.AgentRate != nil {
		doc.AgentRate = &agentRateDocument{
			Type:    string(s.AgentRate.Type),
			Percent: s.AgentRate.Percent,
			Flat:    newMoneyDocument(s.AgentRate.Flat),
		}
	}
	return doc
}

func (d quoteSessionDocument) toAggregate() *domainquote.Session {
	session := &domainquote.Session{
		ID:         domainquote.SessionID(d.ID),
		UserID:     domainuser.ID(d.UserID),
		PropertyID: d.PropertyID,
		Stay: daterange.DateRange{
			CheckIn:  timestampToTime(d.CheckIn),
			CheckOut: timestampToTime(d.CheckOut),
		},
		RoomTypes:  make(map[domainrateplan.RoomTypeID]*domainrateplan.RoomType, len(d.RoomTypes)),
		Selections: booking.Selections{},
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		ExpiresAt:  d.ExpiresAt.UTC(),
		Version:    d.Version,
	}
	for _, rtDoc := range d.RoomTypes {
		rt := rtDoc.toAggregate()
		session.RoomTypes[rt.ID] = rt
	}
	for _, selDoc := range d.Selections {
		sel := booking.Selection{
			RoomTypeID: domainrateplan.RoomTypeID(selDoc.RoomTypeID),
			MealPlan:   domainrateplan.MealPlanID(selDoc.MealPlan),
			Guests:     selDoc.Guests,
			Children:   selDoc.Children,
			Rooms:      selDoc.Rooms,
		}
		for _, eg := range selDoc.ExtraGuests {
			sel.ExtraGuests = append(sel.ExtraGuests, booking.ExtraGuest{Type: booking.ExtraGuestType(eg.Type)})
		}
		session.Selections[sel.RoomTypeID] = sel
	}
	if d.AgentRate != nil {
		session.AgentRate = &domainpricing.AgentRate{
			Type:    domainpricing.AgentRateType(d.AgentRate.Type),
			Percent: d.AgentRate.Percent,
			Flat:    d.AgentRate.Flat.toMoney(),
		}
	}
	return session
}

var _ domainquote.Repository = (*QuoteSessionRepository)(nil)
