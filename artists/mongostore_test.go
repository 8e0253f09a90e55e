package artists

import (
	"context"
	"testing"

	"bandhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func artistDoc(id primitive.ObjectID, extra ...bson.E) bson.D {
	return append(bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: "kim"},
		{Key: "password", Value: "hash"},
	}, extra...)
}

func TestMongoStoreCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("assigns id and empty lists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a, err := NewMongoStore(mt.Coll).Create(ctx, &models.Artist{Username: "kim", Password: "hash"})
		require.NoError(mt, err)
		assert.False(mt, a.ID.IsZero())
		assert.NotNil(mt, a.SongsList)
		assert.NotNil(mt, a.UpcomingEvents)
	})

	mt.Run("duplicate username is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: bandhub.artists index: username_unique",
		}))

		_, err := NewMongoStore(mt.Coll).Create(ctx, &models.Artist{Username: "kim"})
		assert.ErrorIs(mt, err, ErrConflict)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStoreFind(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, artistDoc(id)))

		a, err := NewMongoStore(mt.Coll).FindByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id, a.ID)
		assert.Equal(mt, "kim", a.Username)
	})

	mt.Run("no documents is not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoStore(mt.Coll).FindByUsername(ctx, "nobody")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("invalid id is not found without a query", func(mt *mtest.T) {
		_, err := NewMongoStore(mt.Coll).FindByID(ctx, "not-hex")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("server error stays internal", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		_, err := NewMongoStore(mt.Coll).FindByID(ctx, primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStoreUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("sets only given fields and returns the new document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: artistDoc(id, bson.E{Key: "bio", Value: "riot grrrl"})},
		))

		a, err := NewMongoStore(mt.Coll).Update(ctx, id.Hex(), map[string]any{"bio": "riot grrrl"})
		require.NoError(mt, err)
		assert.Equal(mt, "riot grrrl", a.Bio)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		assert.Equal(mt, "riot grrrl", started.Command.Lookup("update", "$set", "bio").StringValue())
		assert.True(mt, started.Command.Lookup("new").Boolean(), "post-update image is returned")
	})

	mt.Run("missing artist is not found and nothing is upserted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewMongoStore(mt.Coll).Update(ctx, primitive.NewObjectID().Hex(), map[string]any{"name": "ghost"})
		assert.ErrorIs(mt, err, ErrNotFound)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		_, hasUpsert := started.Command.Lookup("upsert").BooleanOK()
		assert.False(mt, hasUpsert && started.Command.Lookup("upsert").Boolean())
	})

	mt.Run("duplicate username is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error",
			Name:    "DuplicateKey",
		}))

		_, err := NewMongoStore(mt.Coll).Update(ctx, primitive.NewObjectID().Hex(), map[string]any{"username": "kim"})
		assert.ErrorIs(mt, err, ErrConflict)
	})
}

func TestMongoStorePush(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("song gets a fresh id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: artistDoc(id)}))

		_, err := NewMongoStore(mt.Coll).PushSong(ctx, id.Hex(), models.Song{Name: "one"})
		require.NoError(mt, err)

		pushed := mt.GetStartedEvent().Command.Lookup("update", "$push", "songsList")
		songID, ok := pushed.Document().Lookup("_id").ObjectIDOK()
		require.True(mt, ok)
		assert.False(mt, songID.IsZero())
		assert.Equal(mt, "one", pushed.Document().Lookup("name").StringValue())
	})

	mt.Run("event on missing artist is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewMongoStore(mt.Coll).PushEvent(ctx, primitive.NewObjectID().Hex(), models.Event{Venue: "Showbox"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStorePull(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()
	songID := primitive.NewObjectID().Hex()

	mt.Run("matched entry is removed", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		removed, err := NewMongoStore(mt.Coll).PullSong(ctx, id, songID)
		require.NoError(mt, err)
		assert.True(mt, removed)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})

	mt.Run("artist matched but no entry", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		removed, err := NewMongoStore(mt.Coll).PullEvent(ctx, id, songID)
		require.NoError(mt, err)
		assert.False(mt, removed)
	})

	mt.Run("invalid ids never reach the server", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)

		removed, err := s.PullSong(ctx, id, "not-hex")
		require.NoError(mt, err)
		assert.False(mt, removed)

		removed, err = s.PullEvent(ctx, "not-hex", songID)
		require.NoError(mt, err)
		assert.False(mt, removed)

		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoStoreDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		assert.NoError(mt, NewMongoStore(mt.Coll).Delete(ctx, primitive.NewObjectID().Hex()))
	})

	mt.Run("nothing deleted is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, NewMongoStore(mt.Coll).Delete(ctx, primitive.NewObjectID().Hex()), ErrNotFound)
	})
}
