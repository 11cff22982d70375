package service

import (
	"context"

	"catalogfinder/internal/cache"
	"catalogfinder/internal/model"
	"catalogfinder/internal/repository"
	"catalogfinder/internal/tree"
)

// AnalyticsService aggregates session outcomes per catalog and verifies that
// stored answer paths replay deterministically against their snapshot.
type AnalyticsService struct {
	sessionRepo repository.SessionRepo
	treeRepo    repository.TreeRepo
	funnelCache cache.FunnelCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	sessionRepo repository.SessionRepo,
	treeRepo repository.TreeRepo,
	funnelCache cache.FunnelCache,
) *AnalyticsService {
	return &AnalyticsService{
		sessionRepo: sessionRepo,
		treeRepo:    treeRepo,
		funnelCache: funnelCache,
	}
}

// Summary builds the funnel overview for one catalog.
func (s *AnalyticsService) Summary(ctx context.Context, catalogID string) (*model.CatalogAnalytics, error) {
	started, err := s.sessionRepo.CountByCatalogID(ctx, catalogID, "")
	if err != nil {
		return nil, err
	}
	completed, err := s.sessionRepo.CountByCatalogID(ctx, catalogID, model.SessionCompleted)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.GetByCatalogID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	answered := 0
	counted := 0
	for _, sess := range sessions {
		if sess.Status != model.SessionCompleted {
			continue
		}
		counted++
		for _, step := range sess.Steps {
			if step.Answer != nil {
				answered++
			}
		}
	}
	avgPath := 0.0
	if counted > 0 {
		avgPath = float64(answered) / float64(counted)
	}

	topLeaves, err := s.funnelCache.GetTop(ctx, catalogID, 10)
	if err != nil {
		topLeaves = nil // funnel is advisory; the Mongo-backed counts stand alone
	}

	return &model.CatalogAnalytics{
		CatalogID:         catalogID,
		SessionsStarted:   started,
		SessionsCompleted: completed,
		AveragePathLength: avgPath,
		TopLeaves:         topLeaves,
	}, nil
}

// VerifySession re-runs a stored session's answers through its snapshot and
// reports whether the replayed path matches the stored one.
func (s *AnalyticsService) VerifySession(ctx context.Context, sessionID string) (*model.ReplayCheck, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	snapshot, err := s.treeRepo.GetByID(ctx, session.TreeID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrTreeNotFound
	}
	root, err := tree.FromDoc(snapshot.Root)
	if err != nil {
		return nil, err
	}

	var choices []tree.Side
	for _, step := range session.Steps {
		if step.Answer != nil {
			choices = append(choices, step.Answer.Choice)
		}
	}
	_, replayPath, err := tree.Replay(root, choices)
	if err != nil {
		return nil, err
	}

	return &model.ReplayCheck{
		SessionID:  sessionID,
		StoredPath: session.NodePath,
		ReplayPath: replayPath,
		Consistent: replayPath == session.NodePath,
	}, nil
}
