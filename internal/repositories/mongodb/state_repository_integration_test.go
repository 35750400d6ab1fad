package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	mongoclient "github.com/ArowuTest/prizedraw-backend/pkg/mongodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// testDatabase connects to PRIZEDRAW_MONGO_TEST_URI or skips the test.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("PRIZEDRAW_MONGO_TEST_URI")
	if uri == "" {
		t.Skip("PRIZEDRAW_MONGO_TEST_URI not set; skipping MongoDB integration test")
	}

	client, err := mongoclient.NewClient(context.Background(), uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("prizedraw_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestStateRepository_RoundTrip(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewStateRepository(db)

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.SaveRoster(ctx, []string{"A", "B", "C"}))
	require.NoError(t, repo.SavePool(ctx, []string{"A", "B", "C"}))
	require.NoError(t, repo.SaveWinners(ctx, map[string][]string{}))

	require.NoError(t, repo.SavePool(ctx, []string{"B"}))
	require.NoError(t, repo.SaveWinners(ctx, map[string][]string{"1st": {"C", "A"}}))

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, state.Roster)
	assert.Equal(t, []string{"B"}, state.Pool)
	assert.Equal(t, map[string][]string{"1st": {"C", "A"}}, state.Winners)
}

func TestDrawRecordRepository_FindRecent(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewDrawRecordRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.DrawRecord{
			ID:      uuid.NewString(),
			Round:   i,
			Tier:    "3rd",
			Names:   []string{"A"},
			DrawnAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records[0].Round)
	assert.Equal(t, 2, records[1].Round)
}
