package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"taskmanager/internal/models/task"
	"taskmanager/internal/repository"
	"taskmanager/internal/repository/task/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(ownerID uuid.UUID, title string) *task.Task {
	return &task.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: "Description",
		Status:      task.StatusNotStarted,
		Priority:    task.PriorityMedium,
	}
}

func TestTaskStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask(uuid.New(), "Test Task")
	require.NoError(t, storage.Create(ctx, created))
	assert.False(t, created.CreatedAt.IsZero())

	retrieved, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrieved.Title)

	_, err = storage.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask(uuid.New(), "Original")
	require.NoError(t, storage.Create(ctx, created))

	created.Title = "Renamed"
	require.NoError(t, storage.Update(ctx, created))
	assert.NotNil(t, created.UpdatedAt)

	retrieved, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", retrieved.Title)

	missing := newTask(uuid.New(), "Ghost")
	assert.ErrorIs(t, storage.Update(ctx, missing), repository.ErrNotFound)
}

func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask(uuid.New(), "Doomed")
	require.NoError(t, storage.Create(ctx, created))

	require.NoError(t, storage.Delete(ctx, created.ID))

	_, err := storage.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, storage.Delete(ctx, created.ID), repository.ErrNotFound)
}

func TestTaskStorage_ListByOwner(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	alice := uuid.New()
	bob := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.Create(ctx, newTask(alice, fmt.Sprintf("Alice %d", i))))
	}
	require.NoError(t, storage.Create(ctx, newTask(bob, "Bob 0")))

	listed, err := storage.ListByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// newest first
	assert.Equal(t, "Alice 2", listed[0].Title)
	assert.Equal(t, "Alice 0", listed[2].Title)

	empty, err := storage.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTaskStorage_DeleteByOwner(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, storage.Create(ctx, newTask(alice, "Alice 0")))
	require.NoError(t, storage.Create(ctx, newTask(bob, "Bob 0")))
	require.NoError(t, storage.Create(ctx, newTask(alice, "Alice 1")))

	removed, err := storage.DeleteByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := storage.ListByOwner(ctx, bob)
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	removed, err = storage.DeleteByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestTaskStorage_OwnerIDs(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, storage.Create(ctx, newTask(alice, "Alice 0")))
	require.NoError(t, storage.Create(ctx, newTask(alice, "Alice 1")))
	require.NoError(t, storage.Create(ctx, newTask(bob, "Bob 0")))

	owners, err := storage.OwnerIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, owners)
}

func TestTaskStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask(uuid.New(), "Original")
	created.AppendActivity("Task created")
	require.NoError(t, storage.Create(ctx, created))

	// mutating records handed out by the store must not touch its state
	loaded, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	loaded.Title = "Mutated"
	loaded.AppendActivity("Status updated to Completed")
	loaded.ActivityLog[0].Action = "Rewritten"

	reread, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", reread.Title)
	require.Len(t, reread.ActivityLog, 1)
	assert.Equal(t, "Task created", reread.ActivityLog[0].Action)

	listed, err := storage.ListByOwner(ctx, created.OwnerID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Title = "Mutated via list"

	reread, err = storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", reread.Title)
}

func TestTaskStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()
	ownerID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = storage.Create(ctx, newTask(ownerID, fmt.Sprintf("Task %d", i)))
		}(i)
	}
	wg.Wait()

	listed, err := storage.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, listed, 50)
}
