package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/gift-bundle/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestBundleService(t *testing.T) (*BundleService, *sqlite.SQLiteRepository) {
	t.Helper()
	repo := newTestRepo(t)
	return NewBundleService(repo, logging.NewNop(), BundleOptions{}), repo
}

func edit(name string, urls ...string) domain.GiftEdit {
	return domain.GiftEdit{Name: name, ImageURLs: urls}
}

func editOf(g domain.Gift, urls ...string) domain.GiftEdit {
	id := g.ID
	return domain.GiftEdit{ID: &id, Name: g.Name, Message: g.Message, PurchaseURL: g.PurchaseURL, ImageURLs: urls}
}

func createTwoGiftBundle(t *testing.T, s *BundleService, owner string) *domain.Bundle {
	t.Helper()
	b, err := s.Create(context.Background(), owner, "Birthday", domain.DesignTypeBlue, []domain.GiftEdit{
		edit("mug", "https://cdn/mug.png"),
		edit("scarf", "https://cdn/scarf.png"),
	})
	require.NoError(t, err)
	return b
}

func TestCreateBundle(t *testing.T) {
	s, repo := newTestBundleService(t)
	ctx := context.Background()

	b := createTwoGiftBundle(t, s, "owner-1")
	assert.Equal(t, domain.BundleStatusDraft, b.Status)
	assert.Nil(t, b.Link)
	assert.Nil(t, b.DeliveryCharacterType)
	require.Len(t, b.Gifts, 2)
	for _, g := range b.Gifts {
		require.Len(t, g.Images, 1)
		assert.True(t, g.Images[0].IsPrimary)
	}

	stored, err := s.Get(ctx, b.ID, "owner-1")
	require.NoError(t, err)
	require.Len(t, stored.Gifts, 2)
	assert.Equal(t, "mug", stored.Gifts[0].Name)
	require.Len(t, stored.Gifts[0].Images, 1)
	assert.True(t, stored.Gifts[0].Images[0].IsPrimary)

	count, err := repo.CountBundles(ctx, "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCreateBundleValidation(t *testing.T) {
	s, repo := newTestBundleService(t)
	ctx := context.Background()
	two := []domain.GiftEdit{edit("a", "https://cdn/a.png"), edit("b", "https://cdn/b.png")}

	tests := []struct {
		name    string
		bundle  string
		design  domain.DesignType
		edits   []domain.GiftEdit
		wantErr error
	}{
		{"blank name", "  ", domain.DesignTypeRed, two, domain.ErrBundleNameRequired},
		{"long name", strings.Repeat("가", 101), domain.DesignTypeRed, two, domain.ErrBundleNameTooLong},
		{"bad design", "ok", domain.DesignType("ORANGE"), two, domain.ErrInvalidDesignType},
		{"one gift", "ok", domain.DesignTypeRed, two[:1], domain.ErrBundleMinimumGiftsRequired},
		{"gift without image", "ok", domain.DesignTypeRed, []domain.GiftEdit{edit("a"), edit("b", "https://cdn/b.png")}, domain.ErrGiftImageRequired},
		{"edit with id on create", "ok", domain.DesignTypeRed, []domain.GiftEdit{editOf(domain.Gift{ID: "x", Name: "a"}, "https://cdn/a.png"), edit("b", "https://cdn/b.png")}, domain.ErrGiftNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, "owner-1", tt.bundle, tt.design, tt.edits)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	count, err := repo.CountBundles(ctx, "owner-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateBundleDailyLimit(t *testing.T) {
	s, _ := newTestBundleService(t)
	ctx := context.Background()

	seoul := time.FixedZone("KST", 9*60*60)
	s.location = seoul
	// 23:30 KST on the 10th; the quota day started at 15:00 UTC on the 9th.
	s.now = func() time.Time { return time.Date(2026, 6, 10, 14, 30, 0, 0, time.UTC) }

	for i := 0; i < 10; i++ {
		createTwoGiftBundle(t, s, "owner-1")
	}
	_, err := s.Create(ctx, "owner-1", "eleventh", domain.DesignTypeRed, []domain.GiftEdit{
		edit("a", "https://cdn/a.png"), edit("b", "https://cdn/b.png"),
	})
	assert.ErrorIs(t, err, domain.ErrBundleDailyLimitExceeded)

	// Another owner has their own quota.
	createTwoGiftBundle(t, s, "owner-2")

	// Midnight in Seoul resets the count.
	s.now = func() time.Time { return time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC) }
	createTwoGiftBundle(t, s, "owner-1")
}

func TestUpdateBundleBelowMinimumPersistsNothing(t *testing.T) {
	s, repo := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")

	changed := editOf(b.Gifts[0], "https://cdn/mug.png")
	changed.Name = "big mug"
	_, err := s.Update(ctx, b.ID, "owner-1", []domain.GiftEdit{changed})
	assert.ErrorIs(t, err, domain.ErrBundleMinimumGiftsRequired)

	gifts, err := repo.ListGifts(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, gifts, 2)
	assert.Equal(t, "mug", gifts[0].Name)
	assert.Equal(t, b.Gifts[1].ID, gifts[1].ID)
}

func TestUpdateBundleAppendsNewGift(t *testing.T) {
	s, _ := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")

	updated, err := s.Update(ctx, b.ID, "owner-1", []domain.GiftEdit{
		editOf(b.Gifts[0], "https://cdn/mug.png"),
		editOf(b.Gifts[1], "https://cdn/scarf-new.png", "https://cdn/scarf-2.png"),
		edit("lamp", "https://cdn/lamp.png"),
	})
	require.NoError(t, err)
	require.Len(t, updated.Gifts, 3)

	stored, err := s.Get(ctx, b.ID, "owner-1")
	require.NoError(t, err)
	require.Len(t, stored.Gifts, 3)
	assert.Equal(t, b.Gifts[0].ID, stored.Gifts[0].ID)
	assert.Equal(t, b.Gifts[1].ID, stored.Gifts[1].ID)
	assert.Equal(t, "lamp", stored.Gifts[2].Name)
	require.Len(t, stored.Gifts[2].Images, 1)
	assert.True(t, stored.Gifts[2].Images[0].IsPrimary)

	// Images are replaced even though the scarf's fields did not change.
	require.Len(t, stored.Gifts[1].Images, 2)
	assert.Equal(t, "https://cdn/scarf-new.png", stored.Gifts[1].Images[0].ImageURL)
	assert.True(t, stored.Gifts[1].Images[0].IsPrimary)
	assert.False(t, stored.Gifts[1].Images[1].IsPrimary)
}

func TestUpdateBundleGuards(t *testing.T) {
	s, _ := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")
	edits := []domain.GiftEdit{editOf(b.Gifts[0], "https://cdn/a.png"), editOf(b.Gifts[1], "https://cdn/b.png")}

	_, err := s.Update(ctx, "missing", "owner-1", edits)
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)

	_, err = s.Update(ctx, b.ID, "intruder", edits)
	assert.ErrorIs(t, err, domain.ErrBundleAccessDenied)

	_, err = s.Publish(ctx, b.ID, "owner-1", domain.CharacterCat)
	require.NoError(t, err)

	_, err = s.Update(ctx, b.ID, "owner-1", edits)
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatus)

	_, err = s.UpdateInfo(ctx, b.ID, "owner-1", "new name", domain.DesignTypeGreen)
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatus)
}

// publishAfterRead hands out the stored bundle, then publishes it before the caller writes.
type publishAfterRead struct {
	*sqlite.SQLiteRepository
	publish func()
}

func (r *publishAfterRead) GetBundle(ctx context.Context, id string) (*domain.Bundle, error) {
	b, err := r.SQLiteRepository.GetBundle(ctx, id)
	if r.publish != nil {
		publish := r.publish
		r.publish = nil
		publish()
	}
	return b, err
}

func TestEditsLoseToConcurrentPublish(t *testing.T) {
	plain, repo := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, plain, "owner-1")

	racing := &publishAfterRead{SQLiteRepository: repo}
	s := NewBundleService(racing, logging.NewNop(), BundleOptions{})
	publishNow := func() {
		_, err := plain.Publish(ctx, b.ID, "owner-1", domain.CharacterDog)
		require.NoError(t, err)
	}

	racing.publish = publishNow
	_, err := s.Update(ctx, b.ID, "owner-1", []domain.GiftEdit{
		editOf(b.Gifts[0], "https://cdn/mug.png"),
		edit("socks", "https://cdn/socks.png"),
		edit("card", "https://cdn/card.png"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatus)

	stored, err := plain.Get(ctx, b.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BundleStatusPublished, stored.Status)
	require.Len(t, stored.Gifts, 2)
	assert.Equal(t, b.Gifts[1].ID, stored.Gifts[1].ID)
}

func TestUpdateInfoLosesToConcurrentPublish(t *testing.T) {
	plain, repo := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, plain, "owner-1")

	racing := &publishAfterRead{SQLiteRepository: repo}
	racing.publish = func() {
		_, err := plain.Publish(ctx, b.ID, "owner-1", domain.CharacterDog)
		require.NoError(t, err)
	}
	s := NewBundleService(racing, logging.NewNop(), BundleOptions{})

	_, err := s.UpdateInfo(ctx, b.ID, "owner-1", "Renamed", domain.DesignTypeGreen)
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatus)

	stored, err := plain.Get(ctx, b.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Birthday", stored.Name)
	assert.Equal(t, domain.DesignTypeBlue, stored.DesignType)
}

func TestUpdateInfo(t *testing.T) {
	s, _ := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")

	updated, err := s.UpdateInfo(ctx, b.ID, "owner-1", "  Graduation ", domain.DesignTypePurple)
	require.NoError(t, err)
	assert.Equal(t, "Graduation", updated.Name)

	stored, err := s.Get(ctx, b.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DesignTypePurple, stored.DesignType)
	assert.Len(t, stored.Gifts, 2)

	_, err = s.UpdateInfo(ctx, b.ID, "owner-1", "x", domain.DesignType("NOPE"))
	assert.ErrorIs(t, err, domain.ErrInvalidDesignType)
}

func TestPublishBundle(t *testing.T) {
	s, repo := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")

	_, err := s.Publish(ctx, b.ID, "owner-1", domain.DeliveryCharacterType("DRAGON"))
	assert.ErrorIs(t, err, domain.ErrInvalidCharacterType)

	_, err = s.Publish(ctx, b.ID, "intruder", domain.CharacterDuck)
	assert.ErrorIs(t, err, domain.ErrBundleAccessDenied)

	published, err := s.Publish(ctx, b.ID, "owner-1", domain.CharacterDuck)
	require.NoError(t, err)
	assert.Equal(t, domain.BundleStatusPublished, published.Status)
	require.NotNil(t, published.Link)
	assert.Len(t, *published.Link, 12)
	assert.NotNil(t, published.PublishedAt)
	assert.True(t, published.HasDeliveryMetadata())

	byLink, err := repo.GetBundleByLink(ctx, *published.Link)
	require.NoError(t, err)
	require.NotNil(t, byLink)
	assert.Equal(t, b.ID, byLink.ID)

	_, err = s.Publish(ctx, b.ID, "owner-1", domain.CharacterDuck)
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatus)
}

func TestCompleteRequiresPublished(t *testing.T) {
	s, _ := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")

	_, err := s.Complete(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatusForComplete)

	_, err = s.Publish(ctx, b.ID, "owner-1", domain.CharacterBear)
	require.NoError(t, err)

	completed, err := s.Complete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BundleStatusCompleted, completed.Status)

	_, err = s.Complete(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidBundleStatusForComplete)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	s, repo := newTestBundleService(t)
	ctx := context.Background()
	b := createTwoGiftBundle(t, s, "owner-1")

	// Not completed yet: nothing happens.
	require.NoError(t, s.MarkRead(ctx, b.ID))
	stored, err := repo.GetBundle(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)

	_, err = s.Publish(ctx, b.ID, "owner-1", domain.CharacterBear)
	require.NoError(t, err)
	_, err = s.Complete(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, s.MarkRead(ctx, b.ID))
	require.NoError(t, s.MarkRead(ctx, b.ID))
	stored, err = repo.GetBundle(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)

	assert.ErrorIs(t, s.MarkRead(ctx, "missing"), domain.ErrBundleNotFound)
}

func TestListBundles(t *testing.T) {
	s, _ := newTestBundleService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createTwoGiftBundle(t, s, "owner-1")
	}
	createTwoGiftBundle(t, s, "owner-2")

	page, total, err := s.List(ctx, "owner-1", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)
	assert.Equal(t, 2, page[0].GiftCount)
	assert.NotNil(t, page[0].ThumbnailURL)

	page, _, err = s.List(ctx, "owner-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, _, err = s.List(ctx, "owner-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)
}

func TestDayBounds(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	from, to := dayBounds(time.Date(2026, 6, 10, 16, 0, 0, 0, time.UTC), seoul)
	assert.True(t, time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC).Equal(from))
	assert.True(t, time.Date(2026, 6, 11, 15, 0, 0, 0, time.UTC).Equal(to))
}
