package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/dmitrijs2005/authdir/internal/server/models"
)

// --- helpers ---

type fakeCache struct {
	mu     sync.Mutex
	items  map[string]models.User
	getErr error
	setErr error
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]models.User{}}
}

func (f *fakeCache) Get(ctx context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.items[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.User{UserName: u.UserName, PasswordHash: u.PasswordHash, Role: u.Role}, nil
}

func (f *fakeCache) Set(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.items[u.UserName] = *u
	return nil
}

func (f *fakeCache) has(userName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[userName]
	return ok
}

func (f *fakeCache) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets + f.sets
}

// fakeUsers behaves like the users table: names are unique.
type fakeUsers struct {
	mu        sync.Mutex
	rows      map[string]models.User
	nextID    int64
	getErr    error
	createErr error
	// hide makes GetUserByLogin report not found, simulating a row that
	// another registration inserted after our check
	hide    bool
	gets    int
	creates int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[string]models.User{}}
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.rows[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	f.rows[u.UserName] = *u
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.rows[userName]
	if !ok || f.hide {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeUsers) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets + f.creates
}

// plainHasher keeps tests fast; digests are "h:" + password.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }

func (plainHasher) Verify(p, digest string) bool {
	return strings.HasPrefix(digest, "h:") && digest[2:] == p
}
