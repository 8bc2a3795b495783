package repository

import (
	"context"
	"fmt"

	"audiobook-storefront/models"
)

// Storage keys of the auth session
const (
	TokenKey = "access_token"
	EmailKey = "user_email"
)

// SessionRepository persists the auth token and email as two plain keys
type SessionRepository struct {
	store KeyValueRepositoryInterface
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(store KeyValueRepositoryInterface) *SessionRepository {
	return &SessionRepository{store: store}
}

var _ SessionRepositoryInterface = (*SessionRepository)(nil)

func (r *SessionRepository) Get(ctx context.Context) (models.Session, error) {
	token, _, err := r.store.Get(ctx, TokenKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read token: %w", err)
	}
	email, _, err := r.store.Get(ctx, EmailKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read email: %w", err)
	}
	return models.Session{Token: string(token), Email: string(email)}, nil
}

func (r *SessionRepository) Save(ctx context.Context, session models.Session) error {
	if err := r.store.Set(ctx, TokenKey, []byte(session.Token)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := r.store.Set(ctx, EmailKey, []byte(session.Email)); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	for _, key := range []string{TokenKey, EmailKey} {
		if err := r.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}
