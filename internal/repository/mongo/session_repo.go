// internal/repository/mongo/session_repo.go
package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository.
// Each user owns exactly one session document.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// GetByUserID loads the session owned by userID.
func (r *mongoSessionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if session.ChatHistory == nil {
		session.ChatHistory = []domain.ChatTurn{}
	}
	return &session, nil
}

// AppendTurns $pushes turns onto the user's transcript. Plan fields are left alone.
func (r *mongoSessionRepository) AppendTurns(ctx context.Context, userID primitive.ObjectID, turns ...domain.ChatTurn) error {
	if userID == primitive.NilObjectID {
		return errors.New("session requires a userId")
	}
	if len(turns) == 0 {
		return nil
	}
	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"chatHistory": bson.M{"$each": turns}},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	return r.upsert(ctx, userID, update)
}

// SavePlanState sets or unsets the plan fields only. A nil plan or pending
// flag is removed from the document.
func (r *mongoSessionRepository) SavePlanState(ctx context.Context, session *domain.Session) error {
	if session.UserID == primitive.NilObjectID {
		return errors.New("session requires a userId")
	}
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	unset := bson.M{}
	if session.ActivePlan != nil {
		set["activePlan"] = session.ActivePlan
	} else {
		unset["activePlan"] = ""
	}
	if session.PendingSince != nil {
		set["pendingSince"] = *session.PendingSince
	} else {
		unset["pendingSince"] = ""
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now, "chatHistory": bson.A{}},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.upsert(ctx, session.UserID, update)
}

// upsert applies update to the user's session, creating it on first write.
// The upsert copies userId from the filter and assigns the _id.
func (r *mongoSessionRepository) upsert(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Another request created the session first
			return repository.ErrUpdateFailed
		}
		return err
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
