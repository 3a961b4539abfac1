package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/cache"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
)

func TestRunUsage(t *testing.T) {
	store := cache.NewMemoryCache()
	var out bytes.Buffer
	require.ErrorIs(t, run(context.Background(), nil, store, &out), errUsage)
	require.ErrorIs(t, run(context.Background(), []string{"bogus"}, store, &out), errUsage)
	require.ErrorIs(t, run(context.Background(), []string{"export"}, store, &out), errUsage)
}

func TestRunShowEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"show"}, cache.NewMemoryCache(), &out))
	assert.Equal(t, "no cached draft\n", out.String())
}

func TestRunImportShowExportClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := cache.NewMemoryCache()

	src := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"customer":{"name":"Ada Lovelace"},"counts":{"drivers":1,"vehicles":0},"drivers":[{"name":"Ada"}]}`), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"import", src}, store, &out))
	assert.Contains(t, out.String(), "imported")

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Ada Lovelace", doc.Customer.Name)

	out.Reset()
	require.NoError(t, run(ctx, []string{"show"}, store, &out))
	assert.Contains(t, out.String(), `"name": "Ada Lovelace"`)

	dst := filepath.Join(dir, "out.json")
	out.Reset()
	require.NoError(t, run(ctx, []string{"export", dst}, store, &out))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	back, ok, err := intake.Parse(b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", back.Customer.Name)

	out.Reset()
	require.NoError(t, run(ctx, []string{"clear"}, store, &out))
	doc, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.Error(t, run(ctx, []string{"export", dst}, store, &out))
}

func TestRunImportRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := cache.NewMemoryCache()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	err := run(ctx, []string{"import", bad}, store, &bytes.Buffer{})
	require.ErrorIs(t, err, intake.ErrParseFailure)

	arr := filepath.Join(dir, "arr.json")
	require.NoError(t, os.WriteFile(arr, []byte(`[1,2]`), 0o644))
	require.Error(t, run(ctx, []string{"import", arr}, store, &bytes.Buffer{}))

	assert.Equal(t, 0, store.Writes())
}
