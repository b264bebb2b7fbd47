package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainorder "staybook/internal/domain/order"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	col := db.Collection("agg_payment_order")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &OrderRepository{col: col}
}

func (r *OrderRepository) ByID(ctx context.Context, id domainorder.OrderID) (*domainorder.PaymentOrder, error) {
	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainorder.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainorder.PaymentOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": string(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainorder.PaymentOrder
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *OrderRepository) Save(ctx context.Context, o *domainorder.PaymentOrder) error {
	doc := newOrderDocument(o)
	filter := bson.M{"_id": doc.ID, "version": o.Version}
	doc.Version = o.Version + 1
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
	o.Version = doc.Version
	return nil
}

type orderLineDocument struct {
	RoomTypeID string        `bson:"room_type_id"`
	RoomIDs    []string      `bson:"room_ids"`
	Rooms      int           `bson:"rooms"`
	Guests     int           `bson:"guests"`
	Children   int           `bson:"children"`
	MealPlanID string        `bson:"meal_plan_id"`
	Price      moneyDocument `bson:"price"`
	Tax        moneyDocument `bson:"tax"`
	TotalPrice moneyDocument `bson:"total_price"`
	CheckIn    string        `bson:"check_in"`
	CheckOut   string        `bson:"check_out"`
	BlockDates []string      `bson:"block_dates"`
}

type orderDocument struct {
	ID             string              `bson:"_id"`
	UserID         string              `bson:"user_id"`
	PropertyID     string              `bson:"property_id"`
	CheckIn        int64               `bson:"check_in"`
	CheckOut       int64               `bson:"check_out"`
	Lines          []orderLineDocument `bson:"lines"`
	Amount         moneyDocument       `bson:"amount"`
	BaseTotal      moneyDocument       `bson:"base_total"`
	Discount       moneyDocument       `bson:"discount"`
	TaxTotal       moneyDocument       `bson:"tax_total"`
	State          string              `bson:"state"`
	GatewayOrderID string              `bson:"gateway_order_id"`
	PaymentID      string              `bson:"payment_id"`
	FailureReason  string              `bson:"failure_reason"`
	CreatedAt      int64               `bson:"created_at"`
	UpdatedAt      int64               `bson:"updated_at"`
	Version        int64               `bson:"version"`
}

func newOrderDocument(o *domainorder.PaymentOrder) orderDocument {
	doc := orderDocument{
		ID:             string(o.ID),
		UserID:         string(o.UserID),
		PropertyID:     o.PropertyID,
		CheckIn:        o.Stay.CheckIn.UnixMilli(),
		CheckOut:       o.Stay.CheckOut.UnixMilli(),
		Amount:         newMoneyDocument(o.Amount),
		BaseTotal:      newMoneyDocument(o.BaseTotal),
		Discount:       newMoneyDocument(o.Discount),
		TaxTotal:       newMoneyDocument(o.TaxTotal),
		State:          string(o.State),
		GatewayOrderID: o.GatewayOrderID,
		PaymentID:      o.PaymentID,
		FailureReason:  o.FailureReason,
		CreatedAt:      o.CreatedAt.UnixMilli(),
		UpdatedAt:      o.UpdatedAt.UnixMilli(),
		Version:        o.Version,
	}
	for _, line := range o.Lines {
		doc.Lines = append(doc.Lines, orderLineDocument{
			RoomTypeID: string(line.RoomTypeID),
			RoomIDs:    line.RoomIDs,
			Rooms:      line.Rooms,
			Guests:     line.Guests,
			Children:   line.Children,
			MealPlanID: string(line.MealPlanID),
			Price:      newMoneyDocument(line.Price),
			Tax:        newMoneyDocument(line.Tax),
			TotalPrice: newMoneyDocument(line.TotalPrice),
			CheckIn:    line.CheckIn,
			CheckOut:   line.CheckOut,
			BlockDates: line.BlockDates,
		})
	}
	return doc
}

func (d orderDocument) toAggregate() *domainorder.PaymentOrder {
	o := &domainorder.PaymentOrder{
		ID:         domainorder.OrderID(d.ID),
		UserID:     domainuser.ID(d.UserID),
		PropertyID: d.PropertyID,
		Stay: daterange.DateRange{
			CheckIn:  timestampToTime(d.CheckIn),
			CheckOut: timestampToTime(d.CheckOut),
		},
		Amount:         d.Amount.toMoney(),
		BaseTotal:      d.BaseTotal.toMoney(),
		Discount:       d.Discount.toMoney(),
		TaxTotal:       d.TaxTotal.toMoney(),
		State:          domainorder.State(d.State),
		GatewayOrderID: d.GatewayOrderID,
		PaymentID:      d.PaymentID,
		FailureReason:  d.FailureReason,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
		Version:        d.Version,
	}
	for _, line := range d.Lines {
		o.Lines = append(o.Lines, domainorder.LineItem{
			RoomTypeID: domainrateplan.RoomTypeID(line.RoomTypeID),
			RoomIDs:    line.RoomIDs,
			Rooms:      line.Rooms,
			Guests:     line.Guests,
			Children:   line.Children,
			MealPlanID: domainrateplan.MealPlanID(line.MealPlanID),
			Price:      line.Price.toMoney(),
			Tax:        line.Tax.toMoney(),
			TotalPrice: line.TotalPrice.toMoney(),
			CheckIn:    line.CheckIn,
			CheckOut:   line.CheckOut,
			BlockDates: line.BlockDates,
		})
	}
	return o
}

var _ domainorder.Repository = (*OrderRepository)(nil)
