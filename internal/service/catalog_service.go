package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalogfinder/internal/cache"
	"catalogfinder/internal/model"
	"catalogfinder/internal/repository"
	"catalogfinder/internal/tree"
)

var ErrCatalogNotFound = errors.New("catalog not found")

// CatalogService owns the build pipeline: a stored catalog is encoded,
// profiled and partitioned into a tree snapshot in one pass.
type CatalogService struct {
	catalogRepo repository.CatalogRepo
	treeRepo    repository.TreeRepo
	treeCache   cache.TreeCache
	defaults    tree.Options
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	catalogRepo repository.CatalogRepo,
	treeRepo repository.TreeRepo,
	treeCache cache.TreeCache,
	defaults tree.Options,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		treeRepo:    treeRepo,
		treeCache:   treeCache,
		defaults:    defaults,
	}
}

// Create stores the raw table and builds its first tree snapshot. A table
// with no usable features is rejected outright rather than stored with a
// degenerate tree.
func (s *CatalogService) Create(ctx context.Context, merchantID, name string, headers []string, rows [][]string, opts tree.Options) (*model.Catalog, *model.TreeSnapshot, error) {
	snapshot, err := s.buildSnapshot(headers, rows, opts)
	if err != nil {
		return nil, nil, err
	}

	catalog := &model.Catalog{
		MerchantID:   merchantID,
		Name:         name,
		Headers:      headers,
		Rows:         rows,
		ProductCount: len(rows),
	}
	id, err := s.catalogRepo.Create(ctx, catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("store catalog: %w", err)
	}
	catalog.ID = id

	snapshot.CatalogID = id
	if err := s.storeSnapshot(ctx, snapshot); err != nil {
		return nil, nil, err
	}
	return catalog, snapshot, nil
}

// Rebuild constructs a fresh snapshot for an existing catalog with new
// options. The previous snapshot stays untouched for in-flight sessions.
func (s *CatalogService) Rebuild(ctx context.Context, catalogID string, opts tree.Options) (*model.TreeSnapshot, error) {
	catalog, err := s.catalogRepo.GetByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, ErrCatalogNotFound
	}

	snapshot, err := s.buildSnapshot(catalog.Headers, catalog.Rows, opts)
	if err != nil {
		return nil, err
	}
	snapshot.CatalogID = catalogID
	if err := s.storeSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetByID retrieves a catalog by ID
func (s *CatalogService) GetByID(ctx context.Context, id string) (*model.Catalog, error) {
	return s.catalogRepo.GetByID(ctx, id)
}

// GetByMerchantID retrieves all catalogs for a merchant
func (s *CatalogService) GetByMerchantID(ctx context.Context, merchantID string) ([]*model.Catalog, error) {
	return s.catalogRepo.GetByMerchantID(ctx, merchantID)
}

// GetLatestTree retrieves the newest snapshot for a catalog
func (s *CatalogService) GetLatestTree(ctx context.Context, catalogID string) (*model.TreeSnapshot, error) {
	return s.treeRepo.GetLatestByCatalogID(ctx, catalogID)
}

func (s *CatalogService) buildSnapshot(headers []string, rows [][]string, opts tree.Options) (*model.TreeSnapshot, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = s.defaults.MaxDepth
	}
	if opts.MinLeafSize == 0 {
		opts.MinLeafSize = s.defaults.MinLeafSize
	}

	products, featureNames, err := tree.Encode(headers, rows)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	profiles := tree.Profile(products, featureNames)

	start := time.Now()
	root, err := tree.Build(products, featureNames, opts)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	metrics := tree.Metrics(root, time.Since(start))

	return &model.TreeSnapshot{
		Root:         tree.ToDoc(root),
		Metrics:      metrics,
		Profiles:     profiles,
		FeatureNames: featureNames,
		Options:      opts,
	}, nil
}

func (s *CatalogService) storeSnapshot(ctx context.Context, snapshot *model.TreeSnapshot) error {
	id, err := s.treeRepo.Insert(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	snapshot.ID = id
	if s.treeCache != nil {
		// Cache priming is best effort; readers fall back to Mongo.
		_ = s.treeCache.Set(ctx, snapshot)
	}
	return nil
}
