package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"dm-service/internal/models"
)

// UserDirectory exposes the identity service's user set. Liveness is not
// recorded here; the presence registry answers that.
type UserDirectory interface {
	ListOthers(ctx context.Context, userID int) ([]models.Contact, error)
}

// UserRepo reads the users table owned by the identity service.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ListOthers returns every known user except the caller.
func (r *UserRepo) ListOthers(ctx context.Context, userID int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.SelectContext(ctx, &contacts, `SELECT id, username FROM users WHERE id <> $1 ORDER BY username ASC, id ASC`, userID)
	return contacts, err
}
