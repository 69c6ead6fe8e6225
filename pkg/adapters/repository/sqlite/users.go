package sqlite

import (
	"context"
	"database/sql"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

const userColumns = `id, kakao_id, nickname, profile_image_url, is_deleted, created_at, updated_at, deleted_at`

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, kakao_id, nickname, profile_image_url, is_deleted, created_at, updated_at, deleted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.KakaoID, user.Nickname, user.ProfileImageURL,
		user.IsDeleted, ts(user.CreatedAt), ts(user.UpdatedAt), nullableTS(user.DeletedAt))
	return err
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetUserByKakaoID(ctx context.Context, kakaoID int64) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE kakao_id = ?`, kakaoID)
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET nickname = ?, profile_image_url = ?, is_deleted = ?, updated_at = ?, deleted_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, user.Nickname, user.ProfileImageURL, user.IsDeleted,
		ts(user.UpdatedAt), nullableTS(user.DeletedAt), user.ID)
	return err
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var u domain.User
	var deletedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.KakaoID, &u.Nickname, &u.ProfileImageURL, &u.IsDeleted,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.DeletedAt = timePtr(deletedAt)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
