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

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

const campaignColumns = `
	id, brand_id, brand_name, title, description, description_text, category,
	COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''), COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
	campaign_type, target_audience, platforms, min_requirements, niche_match,
	geographic_restrictions, content_format, number_of_posts, content_guidelines,
	approval_required, compensation_type, payment_amount, product_details,
	banner_image_url, reference_links, status, applicants, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.BrandID, &c.BrandName, &c.Title, &c.Description, &c.DescriptionText,
		&c.Category, &c.StartDate, &c.EndDate, &c.CampaignType, &c.TargetAudience, &c.Platforms,
		&c.MinRequirements, &c.NicheMatch, &c.GeographicRestrictions, &c.ContentFormat,
		&c.NumberOfPosts, &c.ContentGuidelines, &c.ApprovalRequired, &c.CompensationType,
		&c.PaymentAmount, &c.ProductDetails, &c.BannerImageURL, &c.ReferenceLinks,
		&c.Status, &c.Applicants, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return &c, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	c.Normalize()
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (
			brand_id, brand_name, title, description, description_text, category,
			start_date, end_date, campaign_type, target_audience, platforms, min_requirements,
			niche_match, geographic_restrictions, content_format, number_of_posts,
			content_guidelines, approval_required, compensation_type, payment_amount,
			product_details, banner_image_url, reference_links, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::date, NULLIF($8, '')::date, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id, applicants, created_at, updated_at
	`, c.BrandID, c.BrandName, c.Title, c.Description, c.DescriptionText, c.Category,
		c.StartDate, c.EndDate, c.CampaignType, c.TargetAudience, c.Platforms, c.MinRequirements,
		c.NicheMatch, c.GeographicRestrictions, c.ContentFormat, c.NumberOfPosts,
		c.ContentGuidelines, c.ApprovalRequired, c.CompensationType, c.PaymentAmount,
		c.ProductDetails, c.BannerImageURL, c.ReferenceLinks, c.Status,
	).Scan(&c.ID, &c.Applicants, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Update rewrites the editable content. Status and the applicants counter are
// never touched here.
func (r *CampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	c.Normalize()
	err := r.pool.QueryRow(ctx, `
		UPDATE campaigns SET
			title = $1, description = $2, description_text = $3, category = $4,
			start_date = NULLIF($5, '')::date, end_date = NULLIF($6, '')::date,
			campaign_type = $7, target_audience = $8, platforms = $9, min_requirements = $10,
			niche_match = $11, geographic_restrictions = $12, content_format = $13,
			number_of_posts = $14, content_guidelines = $15, approval_required = $16,
			compensation_type = $17, payment_amount = $18, product_details = $19,
			reference_links = $20, updated_at = now()
		WHERE id = $21 AND status IN ('draft', 'active')
		RETURNING applicants, updated_at
	`, c.Title, c.Description, c.DescriptionText, c.Category, c.StartDate, c.EndDate,
		c.CampaignType, c.TargetAudience, c.Platforms, c.MinRequirements,
		c.NicheMatch, c.GeographicRestrictions, c.ContentFormat,
		c.NumberOfPosts, c.ContentGuidelines, c.ApprovalRequired,
		c.CompensationType, c.PaymentAmount, c.ProductDetails,
		c.ReferenceLinks, c.ID,
	).Scan(&c.Applicants, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missingOr(ctx, c.ID, apperrors.ErrCampaignReadOnly)
	}
	return err
}

// UpdateStatus moves the campaign from one status to another only if it is
// still in the expected one.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, id, apperrors.ErrStatusChanged)
	}
	return nil
}

func (r *CampaignRepo) SetBanner(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET banner_image_url = $1, updated_at = now() WHERE id = $2
	`, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a draft. Published campaigns may have applications and are kept.
func (r *CampaignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, id, apperrors.ErrCampaignReadOnly)
	}
	return nil
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, int, error) {
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.BrandID != nil {
		where = append(where, fmt.Sprintf("brand_id = $%d", argIdx))
		args = append(args, *f.BrandID)
		argIdx++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, f.Status)
		argIdx++
	}
	if f.Query != "" {
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description_text ILIKE $%[1]d OR category ILIKE $%[1]d)", argIdx))
		args = append(args, likePattern(f.Query))
		argIdx++
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + whereSQL +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, clampLimit(f.Limit), f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, total, rows.Err()
}

// ListEnded returns active campaigns whose end date is before today (YYYY-MM-DD).
func (r *CampaignRepo) ListEnded(ctx context.Context, today string) ([]models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+` FROM campaigns
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date < $1::date
		ORDER BY end_date LIMIT 200
	`, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// ReconcileApplicants resets every counter that disagrees with the number of
// stored applications and reports what it changed.
func (r *CampaignRepo) ReconcileApplicants(ctx context.Context) ([]ApplicantDrift, error) {
	rows, err := r.pool.Query(ctx, `
		WITH actual AS (
			SELECT c.id, c.applicants AS stored, COUNT(a.id)::int AS actual
			FROM campaigns c
			LEFT JOIN applications a ON a.campaign_id = c.id
			GROUP BY c.id
		)
		UPDATE campaigns c SET applicants = actual.actual, updated_at = now()
		FROM actual
		WHERE c.id = actual.id AND actual.stored <> actual.actual
		RETURNING c.id, actual.stored, actual.actual
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []ApplicantDrift
	for rows.Next() {
		var d ApplicantDrift
		if err := rows.Scan(&d.CampaignID, &d.Stored, &d.Actual); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

func (r *CampaignRepo) missingOr(ctx context.Context, id uuid.UUID, otherwise error) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return otherwise
}

func likePattern(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, "%", `\%`)
	q = strings.ReplaceAll(q, "_", `\_`)
	return "%" + q + "%"
}
