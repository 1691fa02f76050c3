package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unlinked-app/unlinked-backend/src/models"
)

// Mongo-backed implementations of the service store interfaces. All find
// methods translate mongo.ErrNoDocuments into (nil, nil).

type Users struct {
	col *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{col: db.Collection("users")}
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Users) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	cursor, err := s.col.Find(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"password": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Users) AddConnection(ctx context.Context, userID, otherID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"connections": otherID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}

func (s *Users) RemoveConnection(ctx context.Context, userID, otherID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"connections": otherID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}

type Connections struct {
	col *mongo.Collection
}

func NewConnections(db *mongo.Database) *Connections {
	return &Connections{col: db.Collection("connections")}
}

func (s *Connections) Insert(ctx context.Context, conn *models.Connection) error {
	_, err := s.col.InsertOne(ctx, conn)
	return err
}

func (s *Connections) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Connections) FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"sender": a, "recipient": b},
			{"sender": b, "recipient": a},
		},
		"status": models.ConnectionStatusPending,
	}

	var conn models.Connection
	err := s.col.FindOne(ctx, filter).Decode(&conn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Connections) ListPendingForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Connection, error) {
	filter := bson.M{
		"recipient": recipient,
		"status":    models.ConnectionStatusPending,
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var connections []models.Connection
	if err := cursor.All(ctx, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

// TransitionStatus flips the status only when it still equals from. The
// filtered update is the atomicity guarantee: of two concurrent transitions on
// the same request, exactly one matches.
func (s *Connections) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ConnectionStatus) (bool, error) {
	result, err := s.col.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

type Notifications struct {
	col *mongo.Collection
}

func NewNotifications(db *mongo.Database) *Notifications {
	return &Notifications{col: db.Collection("notifications")}
}

func (s *Notifications) Insert(ctx context.Context, notification *models.Notification) error {
	_, err := s.col.InsertOne(ctx, notification)
	return err
}
