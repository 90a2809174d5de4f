package users

import (
	"context"
	"sync"

	"github.com/example/authgate/internal/common"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process credential store used by tests and the
// "memory" adapter. Not suitable for production: state is lost on restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	byLogin map[string]*User
	byEmail map[string]*User
	roles   map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byLogin: make(map[string]*User),
		byEmail: make(map[string]*User),
		roles:   make(map[string]struct{}),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[user.Login]; ok {
		return nil, common.ErrLoginTaken
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrEmailTaken
	}

	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	r.byLogin[stored.Login] = stored
	r.byEmail[stored.Email] = stored

	return cloneUser(stored), nil
}

func (r *MemoryRepository) GetByLogin(_ context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byLogin[login]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryRepository) AssignRole(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[role]; !ok {
		return common.ErrNotFound
	}

	for _, user := range r.byLogin {
		if user.ID != userID {
			continue
		}
		if !user.HasRole(role) {
			user.Roles = append(user.Roles, role)
		}
		return nil
	}

	return common.ErrNotFound
}

func (r *MemoryRepository) RoleExists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.roles[name]
	return ok, nil
}

func (r *MemoryRepository) CreateRole(_ context.Context, name string) error {
	if name == "" {
		return common.ErrInvalidArgument
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[name] = struct{}{}

	return nil
}

func cloneUser(u *User) *User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}
