package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type RoomTypeRepository struct {
	col *mongo.Collection
}

func NewRoomTypeRepository(db *mongo.Database) *RoomTypeRepository {
	col := db.Collection("agg_room_type")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &RoomTypeRepository{col: col}
}

func (r *RoomTypeRepository) ByID(ctx context.Context, id domainrateplan.RoomTypeID) (*domainrateplan.RoomType, error) {
	var doc roomTypeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrateplan.ErrRoomTypeNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RoomTypeRepository) ByProperty(ctx context.Context, propertyID string) ([]*domainrateplan.RoomType, error) {
	cursor, err := r.col.Find(ctx, bson.M{"property_id": propertyID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainrateplan.RoomType
	for cursor.Next(ctx) {
		var doc roomTypeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *RoomTypeRepository) Save(ctx context.Context, rt *domainrateplan.RoomType) error {
	doc := newRoomTypeDocument(rt)
	filter := bson.M{"_id": doc.ID, "version": rt.Version}
	doc.Version = rt.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rt.Version = doc.Version
	return nil
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type mealPlanPriceDocument struct {
	MealPlanID      string        `bson:"meal_plan_id"`
	Name            string        `bson:"name"`
	Description     string        `bson:"description,omitempty"`
	DoubleOccupancy moneyDocument `bson:"double_occupancy"`
	SingleOccupancy moneyDocument `bson:"single_occupancy"`
	ExtraBedAdult   moneyDocument `bson:"extra_bed_adult"`
	ExtraBedChild   moneyDocument `bson:"extra_bed_child"`
}

type ratePlanDateDocument struct {
	Date  int64                   `bson:"date"`
	Plans []mealPlanPriceDocument `bson:"plans"`
}

type roomTypeDocument struct {
	ID               string                 `bson:"_id"`
	PropertyID       string                 `bson:"property_id"`
	Name             string                 `bson:"name"`
	Description      string                 `bson:"description,omitempty"`
	Occupancy        int                    `bson:"occupancy"`
	MinOccupancy     int                    `bson:"min_occupancy"`
	MaxOccupancy     int                    `bson:"max_occupancy"`
	AvailableRooms   int                    `bson:"available_rooms"`
	AvailableRoomIDs []string               `bson:"available_room_ids"`
	RatePlanDates    []ratePlanDateDocument `bson:"rate_plan_dates"`
	Photos           []string               `bson:"photos"`
	UpdatedAt        int64                  `bson:"updated_at"`
	Version          int64                  `bson:"version"`
}

func newRoomTypeDocument(rt *domainrateplan.RoomType) roomTypeDocument {
	doc := roomTypeDocument{
		ID:               string(rt.ID),
		PropertyID:       rt.PropertyID,
		Name:             rt.Name,
		Description:      rt.Description,
		Occupancy:        rt.Occupancy,
		MinOccupancy:     rt.MinOccupancy,
		MaxOccupancy:     rt.MaxOccupancy,
		AvailableRooms:   rt.AvailableRooms,
		AvailableRoomIDs: rt.AvailableRoomIDs,
		Photos:           rt.Photos,
		UpdatedAt:        rt.UpdatedAt.UnixMilli(),
		Version:          rt.Version,
	}
	for _, d := range rt.RatePlanDates {
		entry := ratePlanDateDocument{Date: d.Date.UnixMilli()}
		for _, p := range d.Plans {
			entry.Plans = append(entry.Plans, mealPlanPriceDocument{
				MealPlanID:      string(p.MealPlanID),
				Name:            p.Name,
				Description:     p.Description,
				DoubleOccupancy: newMoneyDocument(p.DoubleOccupancy),
				SingleOccupancy: newMoneyDocument(p.SingleOccupancy),
				ExtraBedAdult:   newMoneyDocument(p.ExtraBedAdult),
				ExtraBedChild:   newMoneyDocument(p.ExtraBedChild),
			})
		}
		doc.RatePlanDates = append(doc.RatePlanDates, entry)
	}
	return doc
}

func (d roomTypeDocument) toAggregate() *domainrateplan.RoomType {
	rt := &domainrateplan.RoomType{
		ID:               domainrateplan.RoomTypeID(d.ID),
		PropertyID:       d.PropertyID,
		Name:             d.Name,
		Description:      d.Description,
		Occupancy:        d.Occupancy,
		MinOccupancy:     d.MinOccupancy,
		MaxOccupancy:     d.MaxOccupancy,
		AvailableRooms:   d.AvailableRooms,
		AvailableRoomIDs: d.AvailableRoomIDs,
		Photos:           d.Photos,
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
	for _, entry := range d.RatePlanDates {
		date := domainrateplan.RatePlanDate{
			Date:  timestampToTime(entry.Date),
			Plans: make(map[domainrateplan.MealPlanID]domainrateplan.MealPlanPrice, len(entry.Plans)),
		}
		for _, p := range entry.Plans {
			date.Plans[domainrateplan.MealPlanID(p.MealPlanID)] = domainrateplan.MealPlanPrice{
				MealPlanID:      domainrateplan.MealPlanID(p.MealPlanID),
				Name:            p.Name,
				Description:     p.Description,
				DoubleOccupancy: p.DoubleOccupancy.toMoney(),
				SingleOccupancy: p.SingleOccupancy.toMoney(),
				ExtraBedAdult:   p.ExtraBedAdult.toMoney(),
				ExtraBedChild:   p.ExtraBedChild.toMoney(),
			}
		}
		rt.RatePlanDates = append(rt.RatePlanDates, date)
	}
	return rt
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainrateplan.Repository = (*RoomTypeRepository)(nil)
