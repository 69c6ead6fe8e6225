package sqlite

import (
	"context"
	"database/sql"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

const giftColumns = `id, bundle_id, name, message, purchase_url, response_tag, is_responded, sort_order, created_at, updated_at`

func scanGift(row rowScanner) (*domain.Gift, error) {
	var g domain.Gift
	var message, purchaseURL, tag sql.NullString
	if err := row.Scan(&g.ID, &g.BundleID, &g.Name, &message, &purchaseURL, &tag,
		&g.IsResponded, &g.SortOrder, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Message = stringPtr(message)
	g.PurchaseURL = stringPtr(purchaseURL)
	if tag.Valid {
		t := domain.ResponseTag(tag.String)
		g.ResponseTag = &t
	}
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}

func (r *SQLiteRepository) ListGifts(ctx context.Context, bundleID string) ([]domain.Gift, error) {
	query := `SELECT ` + giftColumns + ` FROM gifts WHERE bundle_id = ? ORDER BY sort_order ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gifts []domain.Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		gifts = append(gifts, *g)
	}
	return gifts, rows.Err()
}

func (r *SQLiteRepository) GetGift(ctx context.Context, id string) (*domain.Gift, error) {
	query := `SELECT ` + giftColumns + ` FROM gifts WHERE id = ?`
	g, err := scanGift(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *SQLiteRepository) CountGifts(ctx context.Context, bundleID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gifts WHERE bundle_id = ?`, bundleID).Scan(&count)
	return count, err
}

// ListImages returns the images of every gift in a bundle, ordered by gift then image.
func (r *SQLiteRepository) ListImages(ctx context.Context, bundleID string) ([]domain.GiftImage, error) {
	query := `SELECT gi.id, gi.gift_id, gi.image_url, gi.is_primary, gi.sort_order, gi.uploaded_at
			  FROM gift_images gi
			  JOIN gifts g ON g.id = gi.gift_id
			  WHERE g.bundle_id = ?
			  ORDER BY g.sort_order ASC, gi.sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.GiftImage
	for rows.Next() {
		var img domain.GiftImage
		if err := rows.Scan(&img.ID, &img.GiftID, &img.ImageURL, &img.IsPrimary, &img.SortOrder, &img.UploadedAt); err != nil {
			return nil, err
		}
		img.UploadedAt = img.UploadedAt.UTC()
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *SQLiteRepository) ApplyGiftDiff(ctx context.Context, bundle *domain.Bundle, diff *domain.GiftDiff) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Claim the bundle while it is still DRAFT
	query := `UPDATE bundles SET updated_at = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, query, ts(bundle.UpdatedAt), bundle.ID, string(domain.BundleStatusDraft))
	if err != nil {
		return err
	}
	if err := expectOneRow(res, domain.ErrInvalidBundleStatus); err != nil {
		return err
	}

	// 2. Deletes
	for _, g := range diff.ToDelete {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gift_images WHERE gift_id = ?`, g.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM gifts WHERE id = ?`, g.ID); err != nil {
			return err
		}
	}

	inserted := make(map[string]bool, len(diff.ToInsert))
	for _, g := range diff.ToInsert {
		inserted[g.ID] = true
	}
	changed := make(map[string]bool, len(diff.ToUpdate))
	for _, g := range diff.ToUpdate {
		changed[g.ID] = true
	}

	// 3. Inserts, updates and reordering, then images for every surviving gift
	for _, g := range diff.Gifts {
		switch {
		case inserted[g.ID]:
			if err := insertGift(ctx, tx, &g); err != nil {
				return err
			}
		case changed[g.ID]:
			query := `UPDATE gifts SET name = ?, message = ?, purchase_url = ?, sort_order = ?, updated_at = ? WHERE id = ?`
			if _, err := tx.ExecContext(ctx, query, g.Name, nullableString(g.Message), nullableString(g.PurchaseURL), g.SortOrder, ts(g.UpdatedAt), g.ID); err != nil {
				return err
			}
		default:
			if _, err := tx.ExecContext(ctx, `UPDATE gifts SET sort_order = ? WHERE id = ?`, g.SortOrder, g.ID); err != nil {
				return err
			}
		}
		if err := replaceImages(ctx, tx, g.ID, g.Images); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertGift(ctx context.Context, tx *sql.Tx, g *domain.Gift) error {
	query := `INSERT INTO gifts (id, bundle_id, name, message, purchase_url, response_tag, is_responded, sort_order, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var tag interface{}
	if g.ResponseTag != nil {
		tag = string(*g.ResponseTag)
	}
	_, err := tx.ExecContext(ctx, query, g.ID, g.BundleID, g.Name, nullableString(g.Message), nullableString(g.PurchaseURL),
		tag, g.IsResponded, g.SortOrder, ts(g.CreatedAt), ts(g.UpdatedAt))
	return err
}

// replaceImages swaps a gift's whole image set.
func replaceImages(ctx context.Context, tx *sql.Tx, giftID string, images []domain.GiftImage) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM gift_images WHERE gift_id = ?`, giftID); err != nil {
		return err
	}
	query := `INSERT INTO gift_images (id, gift_id, image_url, is_primary, sort_order, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`
	for _, img := range images {
		if _, err := tx.ExecContext(ctx, query, img.ID, giftID, img.ImageURL, img.IsPrimary, img.SortOrder, ts(img.UploadedAt)); err != nil {
			return err
		}
	}
	return nil
}
