package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sponsorconnect/backend/internal/models"
)

// CreatorProfileRepo stores creator_profiles and their append-only
// creator_snapshots.
type CreatorProfileRepo struct {
	pool *pgxpool.Pool
}

func NewCreatorProfileRepo(pool *pgxpool.Pool) *CreatorProfileRepo {
	return &CreatorProfileRepo{pool: pool}
}

const snapshotColumns = `id, creator_id, platform, followers, views, avg_engagement, top_topics, captured_at`

// Save upserts p and appends snap in one transaction. p.Latest is set to the
// stored snapshot.
func (r *CreatorProfileRepo) Save(ctx context.Context, p *models.CreatorProfile, snap models.CreatorSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO creator_profiles (creator_id, platform, handle, channel_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (creator_id, platform)
		DO UPDATE SET handle = EXCLUDED.handle, channel_url = EXCLUDED.channel_url, updated_at = now()
		RETURNING created_at, updated_at
	`, p.CreatorID, p.Platform, p.Handle, p.ChannelURL).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert creator profile: %w", err)
	}

	snap.CreatorID, snap.Platform = p.CreatorID, p.Platform
	if snap.TopTopics == nil {
		snap.TopTopics = []string{}
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO creator_snapshots (creator_id, platform, followers, views, avg_engagement, top_topics)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, captured_at
	`, snap.CreatorID, snap.Platform, snap.Followers, snap.Views, snap.AvgEngagement, snap.TopTopics,
	).Scan(&snap.ID, &snap.CapturedAt)
	if err != nil {
		return fmt.Errorf("insert creator snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.Latest = &snap
	return nil
}

// ListByCreator returns every profile of the creator, each with its latest
// snapshot, ordered by platform.
func (r *CreatorProfileRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.CreatorProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT creator_id, platform, handle, channel_url, created_at, updated_at
		FROM creator_profiles WHERE creator_id = $1 ORDER BY platform
	`, creatorID)
	if err != nil {
		return nil, err
	}
	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CreatorProfile, error) {
		var p models.CreatorProfile
		err := row.Scan(&p.CreatorID, &p.Platform, &p.Handle, &p.ChannelURL, &p.CreatedAt, &p.UpdatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan creator profiles: %w", err)
	}
	if len(profiles) == 0 {
		return []models.CreatorProfile{}, nil
	}

	rows, err = r.pool.Query(ctx, `
		SELECT DISTINCT ON (platform) `+snapshotColumns+`
		FROM creator_snapshots WHERE creator_id = $1
		ORDER BY platform, captured_at DESC, id DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	snaps, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.CreatorSnapshot])
	if err != nil {
		return nil, fmt.Errorf("scan creator snapshots: %w", err)
	}
	latest := make(map[string]models.CreatorSnapshot, len(snaps))
	for _, s := range snaps {
		latest[s.Platform] = s
	}
	for i := range profiles {
		if s, ok := latest[profiles[i].Platform]; ok {
			profiles[i].Latest = &s
		}
	}
	return profiles, nil
}

// LatestSnapshot returns apperrors.ErrNotFound when the creator has no
// snapshot for platform.
func (r *CreatorProfileRepo) LatestSnapshot(ctx context.Context, creatorID uuid.UUID, platform string) (*models.CreatorSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM creator_snapshots WHERE creator_id = $1 AND platform = $2
		ORDER BY captured_at DESC, id DESC LIMIT 1
	`, creatorID, platform)
	if err != nil {
		return nil, err
	}
	s, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[models.CreatorSnapshot])
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}
