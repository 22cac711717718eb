// Package identity adapts the identity provider that owns user profiles and
// authentication state.
package identity

import (
	"context"
	"errors"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/topichub/backend/internal/models"
	"google.golang.org/api/iterator"
)

// DefaultPageSize is the largest page the Firebase Admin API hands out.
const DefaultPageSize = 1000

var ErrUserNotFound = errors.New("identity: user not found")

// Token is a verified ID token.
type Token struct {
	UID    string
	Email  string
	Claims map[string]any
}

// Provider is the identity collaborator consumed by the access layer.
type Provider interface {
	// GetUser returns ErrUserNotFound when no identity has the given id.
	GetUser(ctx context.Context, uid string) (*models.User, error)
	// ListUsers returns one page of identities and the token of the next page,
	// which is empty once the enumeration is exhausted.
	ListUsers(ctx context.Context, pageToken string) ([]models.User, string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*Token, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error
}

// Firebase implements Provider with the Firebase Admin auth client
type Firebase struct {
	client   *auth.Client
	pageSize int
}

// NewFirebase creates a new Firebase identity provider
func NewFirebase(client *auth.Client, pageSize int) *Firebase {
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	return &Firebase{client: client, pageSize: pageSize}
}

// GetUser fetches a user record by uid
func (f *Firebase) GetUser(ctx context.Context, uid string) (*models.User, error) {
	if uid == "" {
		return nil, ErrUserNotFound
	}
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user := toUser(record)
	return &user, nil
}

// ListUsers fetches one page of user records
func (f *Firebase) ListUsers(ctx context.Context, pageToken string) ([]models.User, string, error) {
	pager := iterator.NewPager(f.client.Users(ctx, ""), f.pageSize, pageToken)

	var records []*auth.ExportedUserRecord
	next, err := pager.NextPage(&records)
	if err != nil {
		return nil, "", err
	}
	users := make([]models.User, 0, len(records))
	for _, r := range records {
		users = append(users, toUser(r.UserRecord))
	}
	return users, next, nil
}

// VerifyIDToken checks a Firebase ID token's signature and expiry
func (f *Firebase) VerifyIDToken(ctx context.Context, idToken string) (*Token, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	email, _ := token.Claims["email"].(string)
	return &Token{UID: token.UID, Email: email, Claims: token.Claims}, nil
}

// SetCustomClaims replaces the custom claims of a user
func (f *Firebase) SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error {
	err := f.client.SetCustomUserClaims(ctx, uid, claims)
	if auth.IsUserNotFound(err) {
		return ErrUserNotFound
	}
	return err
}

func toUser(record *auth.UserRecord) models.User {
	user := models.User{
		ID:            record.UID,
		DisplayName:   record.DisplayName,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
		PhotoURL:      record.PhotoURL,
		PhoneNumber:   record.PhoneNumber,
		Disabled:      record.Disabled,
	}
	if md := record.UserMetadata; md != nil {
		user.CreationTime = millis(md.CreationTimestamp)
		user.LastSignInTime = millis(md.LastLogInTimestamp)
	}
	return user
}

func millis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
