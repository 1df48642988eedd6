package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"flourmill/internal/model"

	"github.com/google/uuid"
)

var errNotFound = errors.New("record not found")

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	mu            sync.Mutex
	users         map[string]*model.User // keyed by ID
	refreshTokens map[string]*model.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[string]*model.User),
		refreshTokens: make(map[string]*model.RefreshToken),
	}
}

func (r *fakeUserRepo) add(user *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID.String()] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID.String()]; !ok {
		return errNotFound
	}
	r.users[user.ID.String()] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshTokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refreshTokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tok, rt := range r.refreshTokens {
		if rt.UserID == userID {
			delete(r.refreshTokens, tok)
		}
	}
	return nil
}

func (r *fakeUserRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tok, rt := range r.refreshTokens {
		if time.Now().After(rt.ExpiresAt) {
			delete(r.refreshTokens, tok)
		}
	}
	return nil
}

func (r *fakeUserRepo) refreshTokenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refreshTokens)
}

// fakeAudit counts recorded actions instead of writing them anywhere.
type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *fakeAudit) Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

func (a *fakeAudit) List(ctx context.Context, page, limit int, action string) ([]AuditEntryResponse, int64, error) {
	return nil, 0, nil
}

func (a *fakeAudit) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.actions))
	copy(out, a.actions)
	return out
}
