package sqlite

import (
	"context"
	"database/sql"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

func (r *SQLiteRepository) CreateResponse(ctx context.Context, response *domain.Response) error {
	query := `INSERT INTO responses (id, gift_id, bundle_id, tag, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, response.ID, response.GiftID, response.BundleID,
		string(response.Tag), nullableString(response.Message), ts(response.CreatedAt))
	if isUniqueViolation(err) {
		return domain.ErrAlreadyAnswered
	}
	return err
}

func (r *SQLiteRepository) GetResponseByGift(ctx context.Context, giftID string) (*domain.Response, error) {
	query := `SELECT id, gift_id, bundle_id, tag, message, created_at FROM responses WHERE gift_id = ?`
	resp, err := scanResponse(r.db.QueryRowContext(ctx, query, giftID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return resp, err
}

func (r *SQLiteRepository) ListResponses(ctx context.Context, bundleID string) ([]domain.Response, error) {
	query := `SELECT id, gift_id, bundle_id, tag, message, created_at FROM responses WHERE bundle_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []domain.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, rows.Err()
}

// CountRespondedGifts counts distinct gifts of the bundle that have a response.
func (r *SQLiteRepository) CountRespondedGifts(ctx context.Context, bundleID string) (int64, error) {
	query := `SELECT COUNT(DISTINCT r.gift_id)
			  FROM responses r
			  JOIN gifts g ON g.id = r.gift_id
			  WHERE g.bundle_id = ?`
	var count int64
	err := r.db.QueryRowContext(ctx, query, bundleID).Scan(&count)
	return count, err
}

func scanResponse(row rowScanner) (*domain.Response, error) {
	var resp domain.Response
	var message sql.NullString
	if err := row.Scan(&resp.ID, &resp.GiftID, &resp.BundleID, &resp.Tag, &message, &resp.CreatedAt); err != nil {
		return nil, err
	}
	resp.Message = stringPtr(message)
	resp.CreatedAt = resp.CreatedAt.UTC()
	return &resp, nil
}
