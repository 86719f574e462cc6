package inmemory

import (
	"context"
	"sync"
	"time"

	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage keeps tasks in a map guarded by a RWMutex. The ids slice
// preserves insertion order so listing can return newest-first without
// sorting. The store holds and hands out copies, so callers never alias
// its internal state.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	s.storage[taskToCreate.ID] = cloneTask(taskToCreate)
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	s.storage[taskToUpdate.ID] = cloneTask(taskToUpdate)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneTask(taskToGet), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	s.removeID(id)
	return nil
}

// ListByOwner returns the owner's tasks newest-first. Insertion order equals
// creation order, so a reverse walk over ids gives creation recency.
func (s *TaskStorage) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if t.OwnerID != ownerID {
			continue
		}
		res = append(res, cloneTask(t))
	}

	return res, nil
}

func (s *TaskStorage) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var removed int64
	remaining := s.ids[:0]
	for _, id := range s.ids {
		if s.storage[id].OwnerID == ownerID {
			delete(s.storage, id)
			removed++
			continue
		}
		remaining = append(remaining, id)
	}
	s.ids = remaining

	return removed, nil
}

// OwnerIDs returns the distinct owner ids present in the store.
func (s *TaskStorage) OwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	owners := []uuid.UUID{}
	for _, id := range s.ids {
		ownerID := s.storage[id].OwnerID
		if _, ok := seen[ownerID]; ok {
			continue
		}
		seen[ownerID] = struct{}{}
		owners = append(owners, ownerID)
	}

	return owners, nil
}

// cloneTask copies the task along with its activity log so callers cannot
// reach the stored slice's backing array.
func cloneTask(t *task.Task) *task.Task {
	copied := *t
	copied.ActivityLog = append([]task.ActivityEntry(nil), t.ActivityLog...)
	return &copied
}

func (s *TaskStorage) removeID(id uuid.UUID) {
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			return
		}
	}
}
