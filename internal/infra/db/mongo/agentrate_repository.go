package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainagentrate "staybook/internal/domain/agentrate"
	domainpricing "staybook/internal/domain/pricing"
	domainuser "staybook/internal/domain/user"
)

type AgentRateRepository struct {
	col *mongo.Collection
}

func NewAgentRateRepository(db *mongo.Database) *AgentRateRepository {
	return &AgentRateRepository{col: db.Collection("agent_rate")}
}

func (r *AgentRateRepository) ByAgent(ctx context.Context, agentID domainuser.ID) (*domainagentrate.Assignment, error) {
	var doc agentRateAssignmentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(agentID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainagentrate.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *AgentRateRepository) Save(ctx context.Context, a *domainagentrate.Assignment) error {
	doc := agentRateAssignmentDocument{
		AgentID: string(a.AgentID),
		Rate: agentRateDocument{
			Type:    string(a.Rate.Type),
			Percent: a.Rate.Percent,
			Flat:    newMoneyDocument(a.Rate.Flat),
		},
		GrantedBy: string(a.GrantedBy),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.AgentID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *AgentRateRepository) Delete(ctx context.Context, agentID domainuser.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(agentID)})
	return err
}

type agentRateAssignmentDocument struct {
	AgentID   string            `bson:"_id"`
	Rate      agentRateDocument `bson:"rate"`
	GrantedBy string            `bson:"granted_by"`
	UpdatedAt int64             `bson:"updated_at"`
}

func (d agentRateAssignmentDocument) toAggregate() *domainagentrate.Assignment {
	return &domainagentrate.Assignment{
		AgentID: domainuser.ID(d.AgentID),
		Rate: domainpricing.AgentRate{
			Type:    domainpricing.AgentRateType(d.Rate.Type),
			Percent: d.Rate.Percent,
			Flat:    d.Rate.Flat.toMoney(),
		},
		GrantedBy: domainuser.ID(d.GrantedBy),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

var _ domainagentrate.Repository = (*AgentRateRepository)(nil)
