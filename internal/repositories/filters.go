package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sponsorconnect/backend/internal/apperrors"
)

type CampaignFilter struct {
	BrandID *uuid.UUID
	Status  string
	Query   string
	Limit   int
	Offset  int
}

type ApplicationFilter struct {
	CampaignID *uuid.UUID
	CreatorID  *uuid.UUID
	BrandID    *uuid.UUID
	Status     string
	Query      string
	Limit      int
	Offset     int
}

// ApplicantDrift is a campaign whose stored counter disagrees with its applications.
type ApplicantDrift struct {
	CampaignID uuid.UUID
	Stored     int
	Actual     int
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}
