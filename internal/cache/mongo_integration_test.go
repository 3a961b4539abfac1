//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/database"
)

func TestMongoCache(t *testing.T) {
	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := database.ConnectMongo(ctx, uri, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	col := client.Database("quote_intake_test").Collection("drafts")
	c := NewMongoCache(col, "")
	exerciseStore(t, c, func() {
		_, err := col.UpdateOne(ctx, bson.M{"_id": DefaultKey}, bson.M{"$set": bson.M{"raw": "not json"}})
		require.NoError(t, err)
	})
}
