package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/models"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

const applicationColumns = `
	a.id, a.campaign_id, a.campaign_name, a.creator_id, a.creator_name, a.creator_email,
	a.platform, a.followers, a.niche, a.status, a.message, a.metrics,
	a.applied_at, a.created_at, a.updated_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.CampaignID, &a.CampaignName, &a.CreatorID, &a.CreatorName,
		&a.CreatorEmail, &a.Platform, &a.Followers, &a.Niche, &a.Status, &a.Message,
		&a.Metrics, &a.AppliedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Apply records the application and bumps the campaign's applicants counter in
// one transaction. The counter update also locks the campaign row, so the
// counter and the applications table never disagree after commit.
func (r *ApplicationRepo) Apply(ctx context.Context, a *models.Application) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		UPDATE campaigns SET applicants = applicants + 1, updated_at = now()
		WHERE id = $1 AND status = 'active'
		RETURNING title
	`, a.CampaignID).Scan(&a.CampaignName)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, a.CampaignID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrCampaignNotOpen
	}
	if err != nil {
		return fmt.Errorf("increment applicants: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO applications (campaign_id, campaign_name, creator_id, creator_name, creator_email,
		                          platform, followers, niche, status, message, metrics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, applied_at, created_at, updated_at
	`, a.CampaignID, a.CampaignName, a.CreatorID, a.CreatorName, a.CreatorEmail,
		a.Platform, a.Followers, a.Niche, a.Status, a.Message, a.Metrics,
	).Scan(&a.ID, &a.AppliedAt, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err, "applications_campaign_creator_key") {
		return apperrors.ErrAlreadyApplied
	}
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// UpdateStatus is a compare-and-set on the current status.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE applications SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrStatusChanged
	}
	return nil
}

func (r *ApplicationRepo) List(ctx context.Context, f ApplicationFilter) ([]models.Application, int, error) {
	from := ` FROM applications a`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.BrandID != nil {
		from += ` JOIN campaigns c ON c.id = a.campaign_id`
		where = append(where, fmt.Sprintf("c.brand_id = $%d", argIdx))
		args = append(args, *f.BrandID)
		argIdx++
	}
	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("a.campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.CreatorID != nil {
		where = append(where, fmt.Sprintf("a.creator_id = $%d", argIdx))
		args = append(args, *f.CreatorID)
		argIdx++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, f.Status)
		argIdx++
	}
	if f.Query != "" {
		where = append(where, fmt.Sprintf(
			"(a.creator_name ILIKE $%[1]d OR a.platform ILIKE $%[1]d OR a.niche ILIKE $%[1]d)", argIdx))
		args = append(args, likePattern(f.Query))
		argIdx++
	}

	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + applicationColumns + from +
		fmt.Sprintf(" ORDER BY a.applied_at DESC, a.id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, clampLimit(f.Limit), f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *a)
	}
	return apps, total, rows.Err()
}
