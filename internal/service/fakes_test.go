package service

// In-memory store fakes. They implement the store interfaces with plain maps
// so service tests exercise real control flow without a database.

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.byID {
		if ex.Email == u.Email && !ex.IsDeleted {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ListActive(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, u := range f.byID {
		if !u.IsDeleted {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateName(_ context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.IsDeleted {
		return repository.ErrNotFound
	}
	u.Name = name
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.IsDeleted {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SoftDelete(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if u, ok := f.byID[id]; ok && !u.IsDeleted {
			u.IsDeleted = true
			n++
		}
	}
	return n, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]*model.Session
	err  error // forced failure for every call when set
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]*model.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, s *model.Session) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Extend(_ context.Context, id string, expiresAt, updatedAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.ExpiresAt = expiresAt
	s.UpdatedAt = updatedAt
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.byID {
		if s.UserID == userID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) DeleteByUserExcept(_ context.Context, userID, keepID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.byID {
		if s.UserID == userID && id != keepID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) DeleteByUsers(_ context.Context, userIDs []string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, uid := range userIDs {
		m, _ := f.DeleteByUser(context.Background(), uid)
		n += m
	}
	return n, nil
}

func (f *fakeSessions) ListActiveByUsers(_ context.Context, userIDs []string, now time.Time) ([]*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Session
	for _, s := range f.byID {
		for _, uid := range userIDs {
			if s.UserID == uid && s.Live(now) {
				cp := *s
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeResets struct {
	mu   sync.Mutex
	byID map[string]*model.PasswordReset
}

func newFakeResets() *fakeResets {
	return &fakeResets{byID: map[string]*model.PasswordReset{}}
}

func (f *fakeResets) Create(_ context.Context, pr *model.PasswordReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *pr
	f.byID[pr.ID] = &cp
	return nil
}

func (f *fakeResets) GetByID(_ context.Context, id string) (*model.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (f *fakeResets) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeResets) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, pr := range f.byID {
		if pr.UserID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

// capturingAuditor records every entry synchronously for assertions.
type capturingAuditor struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (a *capturingAuditor) Record(e model.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *capturingAuditor) last() (model.AuditLog, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return model.AuditLog{}, false
	}
	return a.entries[len(a.entries)-1], true
}

func (a *capturingAuditor) byAction(action string) []model.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.AuditLog
	for _, e := range a.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
