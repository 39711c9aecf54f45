package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/filestore"
	"photo-curator-service/internal/validator"
)

type fakeBulk struct {
	single []domain.ProviderTag
	all    int
	err    error
}

func (f *fakeBulk) DownloadCatalog(_ context.Context, p domain.ProviderTag) service.DownloadResult {
	f.single = append(f.single, p)
	return service.DownloadResult{Provider: p, Saved: 2, Error: f.err}
}

func (f *fakeBulk) DownloadAll(context.Context) []service.DownloadResult {
	f.all++
	out := make([]service.DownloadResult, 0, len(domain.AllProviders))
	for _, p := range domain.AllProviders {
		out = append(out, service.DownloadResult{Provider: p, Existing: 1})
	}
	return out
}

func newTestGlobals(t *testing.T, termText string) (*Globals, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	log := zap.NewNop()

	store := filestore.NewCatalogStore(filepath.Join(dir, "images.json"), validator.New(), log)
	catalog, err := service.NewCatalogService(ctx, store, log)
	require.NoError(t, err)

	for i := int64(1); i <= 2; i++ {
		_, err := catalog.Accept(ctx, "cats", domain.NewCatalogRecord(&domain.PexelsRecord{ID: i, Original: "https://p/x.jpeg"}))
		require.NoError(t, err)
	}
	_, err = catalog.Accept(ctx, "red_panda", domain.NewCatalogRecord(&domain.FlickrRecord{ID: "9", URL: "u", HighResURL: "h"}))
	require.NoError(t, err)

	termsPath := filepath.Join(dir, "search.txt")
	require.NoError(t, os.WriteFile(termsPath, []byte(termText), 0o644))

	buf := &bytes.Buffer{}
	return &Globals{
		Catalog:   catalog,
		Terms:     service.NewTermService(filestore.NewTermsFile(termsPath), catalog.SatisfiedKeys(2), log),
		Downloads: &fakeBulk{},
		MinImages: 2,
		Out:       buf,
	}, buf
}

func TestStatsCmd_Run(t *testing.T) {
	g, buf := newTestGlobals(t, "")

	require.NoError(t, (&StatsCmd{}).Run(g))

	out := buf.String()
	assert.Contains(t, out, "cats")
	assert.Contains(t, out, "red_panda")
	assert.Contains(t, out, "3 photos across 2 terms")
	assert.Regexp(t, `cats\s+2\s+yes`, out)
	assert.NotRegexp(t, `red_panda\s+1\s+yes`, out)
}

func TestTermsCmd_Run(t *testing.T) {
	t.Run("hides satisfied terms", func(t *testing.T) {
		g, buf := newTestGlobals(t, "Cats\n\nred panda\nowls\n")

		require.NoError(t, (&TermsCmd{}).Run(g))

		out := buf.String()
		assert.NotContains(t, out, "Cats")
		assert.Contains(t, out, "red panda")
		assert.Contains(t, out, "owls")
	})

	t.Run("all marks satisfied terms", func(t *testing.T) {
		g, buf := newTestGlobals(t, "Cats\nowls\n")

		require.NoError(t, (&TermsCmd{All: true}).Run(g))

		assert.Contains(t, buf.String(), "*   1  Cats")
		assert.Contains(t, buf.String(), "    2  owls")
	})

	t.Run("empty", func(t *testing.T) {
		g, buf := newTestGlobals(t, "cats\n")

		require.NoError(t, (&TermsCmd{}).Run(g))
		assert.Contains(t, buf.String(), "No terms to review.")
	})
}

func TestDownloadCmd_Run(t *testing.T) {
	t.Run("all providers", func(t *testing.T) {
		g, buf := newTestGlobals(t, "")
		fake := g.Downloads.(*fakeBulk)

		require.NoError(t, (&DownloadCmd{}).Run(g))

		assert.Equal(t, 1, fake.all)
		for _, p := range domain.AllProviders {
			assert.Contains(t, buf.String(), p.String())
		}
	})

	t.Run("single provider", func(t *testing.T) {
		g, _ := newTestGlobals(t, "")
		fake := g.Downloads.(*fakeBulk)

		require.NoError(t, (&DownloadCmd{Provider: "flickr"}).Run(g))
		assert.Equal(t, []domain.ProviderTag{domain.ProviderFlickr}, fake.single)
	})

	t.Run("unknown provider", func(t *testing.T) {
		g, _ := newTestGlobals(t, "")

		err := (&DownloadCmd{Provider: "bing"}).Run(g)
		assert.ErrorIs(t, err, domain.ErrUnknownProvider)
	})

	t.Run("in progress is reported", func(t *testing.T) {
		g, _ := newTestGlobals(t, "")
		g.Downloads.(*fakeBulk).err = service.ErrDownloadInProgress

		err := (&DownloadCmd{Provider: "pexels"}).Run(g)
		assert.True(t, errors.Is(err, service.ErrDownloadInProgress))
	})
}
