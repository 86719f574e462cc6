package inmemory

import (
	"context"
	"sync"
	"time"

	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
)

// UserStorage keeps users in a map guarded by a RWMutex with a secondary
// email index enforcing the uniqueness invariant. The store holds and hands
// out copies, so callers never alias its internal state.
type UserStorage struct {
	storage map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.byEmail[userToCreate.Email]; ok {
		return repo.ErrDuplicateEmail
	}

	if userToCreate.CreatedAt.IsZero() {
		userToCreate.CreatedAt = time.Now()
	}

	s.storage[userToCreate.ID] = cloneUser(userToCreate)
	s.byEmail[userToCreate.Email] = userToCreate.ID
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(userToGet), nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(s.storage[id]), nil
}

func (s *UserStorage) Update(ctx context.Context, userToUpdate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[userToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	if other, ok := s.byEmail[userToUpdate.Email]; ok && other != userToUpdate.ID {
		return repo.ErrDuplicateEmail
	}

	if existing.Email != userToUpdate.Email {
		delete(s.byEmail, existing.Email)
		s.byEmail[userToUpdate.Email] = userToUpdate.ID
	}

	now := time.Now()
	userToUpdate.UpdatedAt = &now
	s.storage[userToUpdate.ID] = cloneUser(userToUpdate)
	return nil
}

func (s *UserStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}

	delete(s.byEmail, existing.Email)
	delete(s.storage, id)
	return nil
}

func cloneUser(u *user.User) *user.User {
	copied := *u
	return &copied
}
