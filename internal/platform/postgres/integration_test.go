package postgres_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/platform/postgres"
	"github.com/cheerforge/cheerforge/internal/store"
	"github.com/cheerforge/cheerforge/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationStoreIntegration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := context.WithTimeout(context.Background(), testdb.TestTimeout)
		defer cancel()

		s := postgres.NewGenerationStore(tx)

		id := "it-" + uuid.NewString()
		created := time.Now().UTC().Truncate(time.Millisecond)

		queued := &domain.StatusRecord{
			TaskID: id, Kind: domain.KindSlogan, Status: domain.StatusQueued,
			CreatedAt: created, UpdatedAt: created,
		}
		require.NoError(t, s.UpsertStatus(ctx, queued))

		processing := queued.Clone()
		processing.Status = domain.StatusProcessing
		processing.Progress = 50
		processing.UpdatedAt = created.Add(time.Second)
		require.NoError(t, s.UpsertStatus(ctx, processing))

		done := processing.Clone()
		done.Status = domain.StatusCompleted
		done.Progress = 100
		done.Result = json.RawMessage(`{"type":"slogan","slogans":[]}`)
		genTime := 2 * time.Second
		done.GenerationTime = &genTime
		completedAt := created.Add(2 * time.Second)
		done.CompletedAt = &completedAt
		done.UpdatedAt = completedAt
		require.NoError(t, s.UpsertStatus(ctx, done))

		got, err := s.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.Equal(t, 100, got.Progress)
		assert.JSONEq(t, string(done.Result), string(got.Result))
		require.NotNil(t, got.GenerationTime)
		assert.Equal(t, genTime, *got.GenerationTime)

		// Re-submitting the same ID resets the previous outcome.
		require.NoError(t, s.UpsertStatus(ctx, queued))
		got, err = s.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusQueued, got.Status)
		assert.Nil(t, got.Result)
		assert.Nil(t, got.CompletedAt)

		_, err = s.GetStatus(ctx, "it-missing-"+uuid.NewString())
		assert.ErrorIs(t, err, store.ErrTaskRecordNotFound)
	})
}
