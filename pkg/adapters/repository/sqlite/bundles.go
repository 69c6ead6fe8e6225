package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

const bundleColumns = `b.id, b.owner_id, b.name, b.design_type, b.delivery_character_type, b.link,
	b.status, b.is_read, b.created_at, b.updated_at, b.published_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBundle reads bundleColumns plus any extra destinations appended after them.
func scanBundle(row rowScanner, extra ...interface{}) (*domain.Bundle, error) {
	var b domain.Bundle
	var character, link sql.NullString
	var publishedAt sql.NullTime

	dest := []interface{}{
		&b.ID, &b.OwnerID, &b.Name, &b.DesignType, &character, &link,
		&b.Status, &b.IsRead, &b.CreatedAt, &b.UpdatedAt, &publishedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if character.Valid {
		c := domain.DeliveryCharacterType(character.String)
		b.DeliveryCharacterType = &c
	}
	b.Link = stringPtr(link)
	b.PublishedAt = timePtr(publishedAt)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func (r *SQLiteRepository) CreateBundle(ctx context.Context, bundle *domain.Bundle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO bundles (id, owner_id, name, design_type, delivery_character_type, link, status, is_read, created_at, updated_at, published_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var character interface{}
	if bundle.DeliveryCharacterType != nil {
		character = string(*bundle.DeliveryCharacterType)
	}
	_, err = tx.ExecContext(ctx, query,
		bundle.ID, bundle.OwnerID, bundle.Name, string(bundle.DesignType), character, nullableString(bundle.Link),
		string(bundle.Status), bundle.IsRead, ts(bundle.CreatedAt), ts(bundle.UpdatedAt), nullableTS(bundle.PublishedAt),
	)
	if err != nil {
		return err
	}

	for _, g := range bundle.Gifts {
		if err := insertGift(ctx, tx, &g); err != nil {
			return err
		}
		if err := replaceImages(ctx, tx, g.ID, g.Images); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetBundle(ctx context.Context, id string) (*domain.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles b WHERE b.id = ?`
	b, err := scanBundle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *SQLiteRepository) GetBundleByLink(ctx context.Context, link string) (*domain.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles b WHERE b.link = ?`
	b, err := scanBundle(r.db.QueryRowContext(ctx, query, link))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *SQLiteRepository) UpdateBundleInfo(ctx context.Context, bundle *domain.Bundle) error {
	query := `UPDATE bundles SET name = ?, design_type = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		bundle.Name, string(bundle.DesignType), ts(bundle.UpdatedAt), bundle.ID, string(domain.BundleStatusDraft),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrInvalidBundleStatus)
}

func (r *SQLiteRepository) MarkBundleRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bundles SET is_read = 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) PublishBundle(ctx context.Context, bundle *domain.Bundle) error {
	if !bundle.HasDeliveryMetadata() || bundle.PublishedAt == nil {
		return domain.ErrIllegalState.Enrich("publish without delivery metadata")
	}

	query := `UPDATE bundles
			  SET status = ?, link = ?, delivery_character_type = ?, published_at = ?, updated_at = ?
			  WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(domain.BundleStatusPublished), *bundle.Link, string(*bundle.DeliveryCharacterType),
		ts(*bundle.PublishedAt), ts(bundle.UpdatedAt), bundle.ID, string(domain.BundleStatusDraft),
	)
	if isUniqueViolation(err) {
		return domain.ErrIllegalState.Enrich("link already taken")
	}
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrInvalidBundleStatus)
}

func (r *SQLiteRepository) CompleteBundle(ctx context.Context, bundle *domain.Bundle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bundles SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(domain.BundleStatusCompleted), ts(bundle.UpdatedAt), bundle.ID, string(domain.BundleStatusPublished),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidBundleStatusForComplete
	}

	// Copy each response onto its gift so the owner view needs no join.
	stamp := `UPDATE gifts
			  SET is_responded = 1,
			      response_tag = (SELECT r.tag FROM responses r WHERE r.gift_id = gifts.id),
			      updated_at = ?
			  WHERE bundle_id = ? AND EXISTS (SELECT 1 FROM responses r WHERE r.gift_id = gifts.id)`
	if _, err := tx.ExecContext(ctx, stamp, ts(bundle.UpdatedAt), bundle.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepository) CountBundlesCreatedBetween(ctx context.Context, ownerID string, from, to time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM bundles WHERE owner_id = ? AND created_at >= ? AND created_at < ?`
	var count int64
	err := r.db.QueryRowContext(ctx, query, ownerID, ts(from), ts(to)).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) ListBundleSummaries(ctx context.Context, ownerID string, limit, offset int) ([]domain.BundleSummary, error) {
	query := `SELECT ` + bundleColumns + `,
				(SELECT COUNT(*) FROM gifts g WHERE g.bundle_id = b.id),
				(SELECT gi.image_url FROM gift_images gi
				   JOIN gifts g ON g.id = gi.gift_id
				  WHERE g.bundle_id = b.id AND gi.is_primary = 1
				  ORDER BY g.sort_order ASC LIMIT 1)
			  FROM bundles b
			  WHERE b.owner_id = ?
			  ORDER BY CASE WHEN b.status = 'COMPLETED' AND b.is_read = 0 THEN 0 ELSE 1 END,
			           b.created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.BundleSummary{}
	for rows.Next() {
		var giftCount int
		var thumbnail sql.NullString
		b, err := scanBundle(rows, &giftCount, &thumbnail)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.BundleSummary{
			Bundle:       *b,
			GiftCount:    giftCount,
			ThumbnailURL: stringPtr(thumbnail),
		})
	}
	return summaries, rows.Err()
}

func (r *SQLiteRepository) CountBundles(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bundles WHERE owner_id = ?`, ownerID).Scan(&count)
	return count, err
}

// Dump returns every bundle with its gifts and images, for export.
func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Bundle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bundleColumns+` FROM bundles b ORDER BY b.created_at ASC`)
	if err != nil {
		return nil, err
	}
	var bundles []domain.Bundle
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		bundles = append(bundles, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range bundles {
		gifts, err := r.ListGifts(ctx, bundles[i].ID)
		if err != nil {
			return nil, err
		}
		images, err := r.ListImages(ctx, bundles[i].ID)
		if err != nil {
			return nil, err
		}
		byGift := make(map[string][]domain.GiftImage)
		for _, img := range images {
			byGift[img.GiftID] = append(byGift[img.GiftID], img)
		}
		for j := range gifts {
			gifts[j].Images = byGift[gifts[j].ID]
		}
		bundles[i].Gifts = gifts
	}
	return bundles, nil
}
