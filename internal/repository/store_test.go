package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// pinCreatedAt overwrites created_at for the given rows behind the store's back.
type pinCreatedAt func(t *testing.T, s TaskStore, at time.Time, ids ...int64)

// runStoreContract exercises the TaskStore behaviour every implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) TaskStore, pin pinCreatedAt) {
	ctx := context.Background()

	t.Run("insert assigns id and defaults", func(t *testing.T) {
		s := newStore(t)
		task, err := s.Insert(ctx, "Write report", strPtr("quarterly"))
		require.NoError(t, err)

		assert.Positive(t, task.ID)
		assert.Equal(t, "Write report", task.Title)
		require.NotNil(t, task.Description)
		assert.Equal(t, "quarterly", *task.Description)
		assert.False(t, task.Completed)
		assert.False(t, task.CreatedAt.IsZero())
		assert.False(t, task.UpdatedAt.IsZero())

		next, err := s.Insert(ctx, "Second", nil)
		require.NoError(t, err)
		assert.Greater(t, next.ID, task.ID)
		assert.Nil(t, next.Description)
	})

	t.Run("find by id", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, "Lookup", nil)
		require.NoError(t, err)

		got, found, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Lookup", got.Title)

		_, found, err = s.FindByID(ctx, created.ID+1000)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("recent incomplete window", func(t *testing.T) {
		s := newStore(t)
		var ids []int64
		for i := 1; i <= 6; i++ {
			task, err := s.Insert(ctx, fmt.Sprintf("T%d", i), nil)
			require.NoError(t, err)
			ids = append(ids, task.ID)
		}
		_, err := s.MarkCompleted(ctx, ids[4])
		require.NoError(t, err)

		recent, err := s.FindRecentIncomplete(ctx, 5)
		require.NoError(t, err)
		require.Len(t, recent, 5)

		var titles []string
		for _, task := range recent {
			assert.False(t, task.Completed)
			titles = append(titles, task.Title)
		}
		assert.Equal(t, []string{"T6", "T4", "T3", "T2", "T1"}, titles)

		for i := 1; i < len(recent); i++ {
			prev, cur := recent[i-1], recent[i]
			assert.False(t, cur.CreatedAt.After(prev.CreatedAt))
			if cur.CreatedAt.Equal(prev.CreatedAt) {
				assert.Less(t, cur.ID, prev.ID)
			}
		}
	})

	t.Run("equal created_at breaks ties by id", func(t *testing.T) {
		s := newStore(t)
		var ids []int64
		for i := 1; i <= 4; i++ {
			task, err := s.Insert(ctx, fmt.Sprintf("Tie%d", i), nil)
			require.NoError(t, err)
			ids = append(ids, task.ID)
		}
		pin(t, s, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), ids...)

		recent, err := s.FindRecentIncomplete(ctx, 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, []int64{ids[3], ids[2], ids[1]}, []int64{recent[0].ID, recent[1].ID, recent[2].ID})
		for _, task := range recent {
			assert.True(t, task.CreatedAt.Equal(recent[0].CreatedAt))
		}
	})

	t.Run("recent incomplete on empty table", func(t *testing.T) {
		s := newStore(t)
		recent, err := s.FindRecentIncomplete(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})

	t.Run("mark completed transitions once", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, "Finish me", nil)
		require.NoError(t, err)

		done, err := s.MarkCompleted(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, done.Completed)
		assert.Equal(t, created.ID, done.ID)
		assert.False(t, done.UpdatedAt.Before(created.UpdatedAt))
		assert.True(t, done.CreatedAt.Equal(created.CreatedAt))

		_, err = s.MarkCompleted(ctx, created.ID)
		assert.ErrorIs(t, err, ErrAlreadyCompleted)

		_, err = s.MarkCompleted(ctx, created.ID+1000)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent completion has one winner", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, "Race", nil)
		require.NoError(t, err)

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			already   int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.MarkCompleted(ctx, created.ID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case assert.ErrorIs(t, err, ErrAlreadyCompleted):
					already++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, already)
	})

	t.Run("find all and delete", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Insert(ctx, "A", nil)
		require.NoError(t, err)
		b, err := s.Insert(ctx, "B", nil)
		require.NoError(t, err)
		_, err = s.MarkCompleted(ctx, a.ID)
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, b.ID, all[0].ID)

		require.NoError(t, s.Delete(ctx, a.ID))
		assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)

		_, found, err := s.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
