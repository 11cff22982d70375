package service

import (
	"context"
	"strconv"
	"testing"

	"catalogfinder/internal/model"
	"catalogfinder/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	catalogs map[string]*model.Catalog
	nextID   int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{catalogs: make(map[string]*model.Catalog)}
}

func (f *fakeCatalogRepo) Create(_ context.Context, c *model.Catalog) (string, error) {
	f.nextID++
	id := "catalog-" + strconv.Itoa(f.nextID)
	c.ID = id
	f.catalogs[id] = c
	return id, nil
}

func (f *fakeCatalogRepo) GetByID(_ context.Context, id string) (*model.Catalog, error) {
	return f.catalogs[id], nil
}

func (f *fakeCatalogRepo) GetByMerchantID(_ context.Context, merchantID string) ([]*model.Catalog, error) {
	var out []*model.Catalog
	for _, c := range f.catalogs {
		if c.MerchantID == merchantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) Delete(_ context.Context, id string) error {
	delete(f.catalogs, id)
	return nil
}

func newCatalogFixture() (*CatalogService, *fakeCatalogRepo, *fakeTreeRepo) {
	catalogRepo := newFakeCatalogRepo()
	treeRepo := newFakeTreeRepo()
	svc := NewCatalogService(catalogRepo, treeRepo, newFakeTreeCache(), tree.Options{MaxDepth: 10, MinLeafSize: 3})
	return svc, catalogRepo, treeRepo
}

func TestCatalogCreateBuildsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogFixture()

	headers := []string{"product_id", "price", "rating"}
	rows := [][]string{
		{"p1", "10", "4.5"},
		{"p2", "20", "3.0"},
		{"p3", "30", "5.0"},
		{"p4", "40", "2.5"},
		{"p5", "50", "4.0"},
	}

	catalog, snapshot, err := svc.Create(ctx, "m1", "demo", headers, rows, tree.Options{MaxDepth: 3, MinLeafSize: 1})
	require.NoError(t, err)

	assert.Equal(t, 5, catalog.ProductCount)
	assert.Equal(t, catalog.ID, snapshot.CatalogID)
	assert.NotEmpty(t, snapshot.ID)
	assert.Equal(t, []string{"price", "rating"}, snapshot.FeatureNames)
	assert.Len(t, snapshot.Profiles, 2)
	assert.Greater(t, snapshot.Metrics.LeafCount, 1)
	assert.LessOrEqual(t, snapshot.Metrics.Depth, 3)

	// The stored document reconstructs into a walkable tree.
	root, err := tree.FromDoc(snapshot.Root)
	require.NoError(t, err)
	assert.NotNil(t, tree.HyperplaneAt(root))
}

func TestCatalogCreateRejectsUnusableTable(t *testing.T) {
	ctx := context.Background()
	svc, catalogRepo, _ := newCatalogFixture()

	_, _, err := svc.Create(ctx, "m1", "bad", []string{"id"}, [][]string{{"a"}, {"b"}}, tree.Options{})
	assert.ErrorIs(t, err, tree.ErrNoFeatures)

	_, _, err = svc.Create(ctx, "m1", "empty", []string{"price"}, nil, tree.Options{})
	assert.ErrorIs(t, err, tree.ErrEmptyInput)

	// Nothing was stored for the rejected tables.
	assert.Empty(t, catalogRepo.catalogs)
}

func TestCatalogRebuildKeepsOldSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, treeRepo := newCatalogFixture()

	headers := []string{"price", "rating"}
	rows := [][]string{
		{"10", "4.5"}, {"20", "3.0"}, {"30", "5.0"}, {"40", "2.5"}, {"50", "4.0"},
	}
	catalog, first, err := svc.Create(ctx, "m1", "demo", headers, rows, tree.Options{MaxDepth: 2, MinLeafSize: 1})
	require.NoError(t, err)

	second, err := svc.Rebuild(ctx, catalog.ID, tree.Options{MaxDepth: 5, MinLeafSize: 1})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	// Both snapshots stay readable; sessions pin the one they started on.
	old, err := treeRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, first.Metrics, old.Metrics)

	latest, err := svc.GetLatestTree(ctx, catalog.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestCatalogRebuildMissingCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogFixture()

	_, err := svc.Rebuild(ctx, "missing", tree.Options{})
	assert.ErrorIs(t, err, ErrCatalogNotFound)
}
