package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/models"
)

// AccountRepo stores brands and creators, one table per role.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func accountTable(userType string) (string, error) {
	switch userType {
	case models.UserTypeBrand:
		return "brands", nil
	case models.UserTypeCreator:
		return "creators", nil
	}
	return "", apperrors.Validation("unknown user type %q", userType)
}

func otherTable(table string) string {
	if table == "brands" {
		return "creators"
	}
	return "brands"
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	table, err := accountTable(a.UserType)
	if err != nil {
		return err
	}
	if err := r.ensureEmailFree(ctx, otherTable(table), a.Email); err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (name, email, password_hash) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, table), a.Name, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err, "") {
		return apperrors.ErrEmailTaken
	}
	return err
}

func (r *AccountRepo) GetByID(ctx context.Context, userType string, id uuid.UUID) (*models.Account, error) {
	table, err := accountTable(userType)
	if err != nil {
		return nil, err
	}
	a := models.Account{UserType: userType}
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, name, email, password_hash, created_at, updated_at FROM %s WHERE id = $1
	`, table), id).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindByEmail looks the address up across both roles.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at, 'brand' FROM brands WHERE lower(email) = lower($1)
		UNION ALL
		SELECT id, name, email, password_hash, created_at, updated_at, 'creator' FROM creators WHERE lower(email) = lower($1)
		LIMIT 1
	`, email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt, &a.UserType)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AccountRepo) Update(ctx context.Context, a *models.Account) error {
	table, err := accountTable(a.UserType)
	if err != nil {
		return err
	}
	if err := r.ensureEmailFree(ctx, otherTable(table), a.Email); err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET name = $1, email = $2, updated_at = now() WHERE id = $3
		RETURNING created_at, updated_at
	`, table), a.Name, a.Email, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err, "") {
		return apperrors.ErrEmailTaken
	}
	return notFound(err)
}

// ensureEmailFree rejects an address already used by the other role.
func (r *AccountRepo) ensureEmailFree(ctx context.Context, table, email string) error {
	var taken bool
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT EXISTS(SELECT 1 FROM %s WHERE lower(email) = lower($1))
	`, table), email).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrEmailTaken
	}
	return nil
}
