package usecase_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/msgbox/pkg/usecase"
	"github.com/spf13/afero"
)

func TestRetentionUseCase_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("removes expired entries", func(t *testing.T) {
		store, fs := newStore(t)
		root := seedFolder(t, store, fs, sampleMessage())
		upload := filepath.Join("/srv", "uploads", testFolderID+".msg")
		gt.NoError(t, afero.WriteFile(fs, upload, []byte("x"), 0o600))

		old := now.Add(-72 * time.Hour)
		gt.NoError(t, fs.Chtimes(root, old, old))
		gt.NoError(t, fs.Chtimes(upload, old, old))

		uc := usecase.NewRetention(store, 24*time.Hour, usecase.WithClock(func() time.Time { return now }))
		result, err := uc.Sweep(ctx)
		gt.NoError(t, err)
		gt.A(t, result.Removed).Length(2)

		exists, err := afero.DirExists(fs, root)
		gt.NoError(t, err)
		gt.False(t, exists)
	})

	t.Run("keeps fresh entries", func(t *testing.T) {
		store, fs := newStore(t)
		root := seedFolder(t, store, fs, sampleMessage())
		gt.NoError(t, fs.Chtimes(root, now, now))

		uc := usecase.NewRetention(store, 24*time.Hour, usecase.WithClock(func() time.Time { return now }))
		result, err := uc.Sweep(ctx)
		gt.NoError(t, err)
		gt.A(t, result.Removed).Length(0)
	})

	t.Run("disabled retention keeps everything", func(t *testing.T) {
		store, fs := newStore(t)
		root := seedFolder(t, store, fs, sampleMessage())
		old := now.Add(-24 * 365 * time.Hour)
		gt.NoError(t, fs.Chtimes(root, old, old))

		uc := usecase.NewRetention(store, 0)
		result, err := uc.Sweep(ctx)
		gt.NoError(t, err)
		gt.A(t, result.Removed).Length(0)

		exists, err := afero.DirExists(fs, root)
		gt.NoError(t, err)
		gt.True(t, exists)
	})
}
