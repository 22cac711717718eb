// Package identitytest provides an in-memory identity.Provider for tests.
package identitytest

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/anonto42/topichub/backend/internal/models"
)

// ErrInvalidToken is returned by VerifyIDToken for unknown tokens.
var ErrInvalidToken = errors.New("identitytest: invalid id token")

// Fake is a concurrency-safe identity.Provider backed by maps. Users are
// listed in id order.
type Fake struct {
	mu       sync.RWMutex
	users    map[string]models.User
	tokens   map[string]identity.Token
	claims   map[string]map[string]any
	err      error
	pageSize int
}

var _ identity.Provider = (*Fake)(nil)

// New creates an empty Fake that pages ListUsers by pageSize.
func New(pageSize int) *Fake {
	if pageSize <= 0 {
		pageSize = identity.DefaultPageSize
	}
	return &Fake{
		users:    make(map[string]models.User),
		tokens:   make(map[string]identity.Token),
		claims:   make(map[string]map[string]any),
		pageSize: pageSize,
	}
}

// AddUser registers users.
func (f *Fake) AddUser(users ...models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range users {
		f.users[u.ID] = u
	}
}

// RemoveUser deletes a user, leaving any stored references dangling.
func (f *Fake) RemoveUser(uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, uid)
}

// AddToken makes VerifyIDToken accept idToken.
func (f *Fake) AddToken(idToken string, token identity.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[idToken] = token
}

// FailWith makes every call return err until it is reset with nil.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Claims returns the custom claims last set for uid.
func (f *Fake) Claims(uid string) map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.claims[uid]
}

func (f *Fake) GetUser(_ context.Context, uid string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return &u, nil
}

// ListUsers uses the decimal offset of the next page as its page token.
func (f *Fake) ListUsers(_ context.Context, pageToken string) ([]models.User, string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, "", f.err
	}
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, "", err
		}
		offset = n
	}

	ids := slices.Sorted(maps.Keys(f.users))
	if offset > len(ids) {
		offset = len(ids)
	}
	end := min(offset+f.pageSize, len(ids))
	page := make([]models.User, 0, end-offset)
	for _, id := range ids[offset:end] {
		page = append(page, f.users[id])
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

func (f *Fake) VerifyIDToken(_ context.Context, idToken string) (*identity.Token, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	token, ok := f.tokens[idToken]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &token, nil
}

func (f *Fake) SetCustomClaims(_ context.Context, uid string, claims map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[uid]; !ok {
		return identity.ErrUserNotFound
	}
	f.claims[uid] = maps.Clone(claims)
	return nil
}
