package artists

import (
	"context"
	"errors"
	"fmt"

	"bandhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *MongoStore) Create(ctx context.Context, a *models.Artist) (*models.Artist, error) {
	doc := *a
	doc.ID = primitive.NewObjectID()
	if doc.SongsList == nil {
		doc.SongsList = []models.Song{}
	}
	if doc.UpcomingEvents == nil {
		doc.UpcomingEvents = []models.Event{}
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, storeErr("insert artist", err)
	}
	return &doc, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Artist, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*models.Artist, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.Artist, error) {
	var artist models.Artist
	if err := s.coll.FindOne(ctx, filter).Decode(&artist); err != nil {
		return nil, storeErr("find artist", err)
	}
	return &artist, nil
}

// findAndModify applies update to the artist and returns the post-update document.
func (s *MongoStore) findAndModify(ctx context.Context, id string, update bson.M) (*models.Artist, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var artist models.Artist
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&artist); err != nil {
		return nil, storeErr("update artist", err)
	}
	return &artist, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, fields map[string]any) (*models.Artist, error) {
	if len(fields) == 0 {
		return s.FindByID(ctx, id)
	}
	return s.findAndModify(ctx, id, bson.M{"$set": bson.M(fields)})
}

func (s *MongoStore) PushSong(ctx context.Context, id string, song models.Song) (*models.Artist, error) {
	song.ID = primitive.NewObjectID()
	return s.findAndModify(ctx, id, bson.M{"$push": bson.M{"songsList": song}})
}

func (s *MongoStore) PushEvent(ctx context.Context, id string, event models.Event) (*models.Artist, error) {
	event.ID = primitive.NewObjectID()
	return s.findAndModify(ctx, id, bson.M{"$push": bson.M{"upcomingEvents": event}})
}

func (s *MongoStore) PullSong(ctx context.Context, id, songID string) (bool, error) {
	return s.pull(ctx, id, "songsList", songID)
}

func (s *MongoStore) PullEvent(ctx context.Context, id, eventID string) (bool, error) {
	return s.pull(ctx, id, "upcomingEvents", eventID)
}

func (s *MongoStore) pull(ctx context.Context, id, list, itemID string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, nil
	}
	itemOID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return false, nil
	}

	filter := bson.M{"_id": oid}
	update := bson.M{"$pull": bson.M{list: bson.M{"_id": itemOID}}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, storeErr("pull "+list, err)
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete artist", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
