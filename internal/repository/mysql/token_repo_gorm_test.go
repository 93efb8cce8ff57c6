package mysql

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepo_RecordDownload(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	tok := &domain.DownloadToken{
		Token:         "abc",
		InvoiceNumber: "INV-1",
		ProductID:     1,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, tok))

	at := time.Now()
	require.NoError(t, repo.RecordDownload(ctx, "abc", at))
	require.NoError(t, repo.RecordDownload(ctx, "abc", at.Add(time.Minute)))

	got, err := repo.FindByToken(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsUsed)
	assert.Equal(t, int64(2), got.DownloadCount)
	require.NotNil(t, got.LastDownloadAt)
	assert.WithinDuration(t, at.Add(time.Minute), *got.LastDownloadAt, time.Second)

	err = repo.RecordDownload(ctx, "missing", at)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	missing, err := repo.FindByToken(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
