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

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrTreeNotFound     = errors.New("no tree snapshot for catalog")
)

// WebSocket event types emitted while a shopper walks the tree.
const (
	EventSessionStarted   = "session_started"
	EventAnswerRecorded   = "answer_recorded"
	EventSessionCompleted = "session_completed"
)

// SessionService runs the questionnaire state machine: a session starts at
// the tree root and each answer descends one level until a leaf's products
// become the recommendations. The tree snapshot is immutable, so any number
// of sessions walk it concurrently without coordination.
type SessionService struct {
	sessionRepo  repository.SessionRepo
	treeRepo     repository.TreeRepo
	sessionCache cache.SessionCache
	treeCache    cache.TreeCache
	funnelCache  cache.FunnelCache
	questionSvc  *QuestionService
	broadcaster  Broadcaster
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	treeRepo repository.TreeRepo,
	sessionCache cache.SessionCache,
	treeCache cache.TreeCache,
	funnelCache cache.FunnelCache,
	questionSvc *QuestionService,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		treeRepo:     treeRepo,
		sessionCache: sessionCache,
		treeCache:    treeCache,
		funnelCache:  funnelCache,
		questionSvc:  questionSvc,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a session at the root of the catalog's newest snapshot and
// returns the first question, or immediate recommendations when the whole
// catalog collapsed into a single leaf.
func (s *SessionService) Start(ctx context.Context, catalogID, shopperID string) (*model.Session, error) {
	snapshot, err := s.treeRepo.GetLatestByCatalogID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrTreeNotFound
	}
	root, err := tree.FromDoc(snapshot.Root)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snapshot.ID, err)
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		CatalogID: catalogID,
		TreeID:    snapshot.ID,
		ShopperID: shopperID,
		Status:    model.SessionActive,
		NodePath:  "",
	}

	completed := false
	if hp := tree.HyperplaneAt(root); hp != nil {
		q := s.questionSvc.Phrase(hp, "", snapshot.Profiles)
		session.Steps = []model.NavigationStep{{NodePath: "", Question: *q}}
	} else {
		// Single-leaf tree: nothing to ask.
		s.complete(session, root)
		completed = true
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	_ = s.sessionCache.Set(ctx, session)
	s.broadcast(catalogID, EventSessionStarted, session.ID)
	if completed {
		s.emitCompleted(ctx, session)
	}
	return session, nil
}

// Answer applies one left/right choice: it descends from the session's
// current node, records the step, and either returns the next question or
// completes the session with the leaf's products.
func (s *SessionService) Answer(ctx context.Context, sessionID string, choice tree.Side) (*model.Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, ErrSessionCompleted
	}

	snapshot, err := s.loadSnapshot(ctx, session.TreeID)
	if err != nil {
		return nil, err
	}
	root, err := tree.FromDoc(snapshot.Root)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snapshot.ID, err)
	}

	node, err := tree.NodeAt(root, session.NodePath)
	if err != nil {
		return nil, err
	}
	next, err := tree.Descend(node, choice)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if n := len(session.Steps); n > 0 && session.Steps[n-1].Answer == nil {
		session.Steps[n-1].Answer = &model.Answer{Choice: choice, AnsweredAt: now}
	}
	session.NodePath = tree.PathStep(session.NodePath, choice)

	completed := false
	if hp := tree.HyperplaneAt(next); hp != nil {
		q := s.questionSvc.Phrase(hp, session.NodePath, snapshot.Profiles)
		session.Steps = append(session.Steps, model.NavigationStep{NodePath: session.NodePath, Question: *q})
	} else {
		s.complete(session, next)
		completed = true
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	_ = s.sessionCache.Set(ctx, session)
	if completed {
		s.emitCompleted(ctx, session)
	} else {
		s.broadcast(session.CatalogID, EventAnswerRecorded, session.ID)
	}
	return session, nil
}

// Get retrieves a session by ID
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.load(ctx, sessionID)
}

// Resume reloads a session and re-resolves its current node against the
// stored snapshot, so a reconnecting shopper picks up exactly where the
// audit trail says they stopped.
func (s *SessionService) Resume(ctx context.Context, sessionID string) (*model.Session, *model.Question, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.SessionActive {
		return session, nil, nil
	}

	snapshot, err := s.loadSnapshot(ctx, session.TreeID)
	if err != nil {
		return nil, nil, err
	}
	root, err := tree.FromDoc(snapshot.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", snapshot.ID, err)
	}
	if _, err := tree.NodeAt(root, session.NodePath); err != nil {
		return nil, nil, err
	}
	return session, s.CurrentQuestion(session), nil
}

// CurrentQuestion returns the session's pending question, or nil when the
// session has reached a leaf and recommendations should be shown.
func (s *SessionService) CurrentQuestion(session *model.Session) *model.Question {
	if n := len(session.Steps); n > 0 && session.Steps[n-1].Answer == nil {
		q := session.Steps[n-1].Question
		return &q
	}
	return nil
}

// complete fills in the terminal session state. Side effects (funnel count,
// completion event) wait until the session is persisted; see emitCompleted.
func (s *SessionService) complete(session *model.Session, leaf tree.Node) {
	products, err := tree.LeafProducts(leaf)
	if err != nil {
		// complete is only called with a leaf; anything else is a bug in
		// the descent above.
		panic(err)
	}
	now := time.Now()
	session.Status = model.SessionCompleted
	session.CompletedAt = &now
	session.Recommendations = make([]model.Recommendation, 0, len(products))
	for _, p := range products {
		session.Recommendations = append(session.Recommendations, model.Recommendation{
			ProductID: p.ID,
			Row:       p.OriginalRow,
		})
	}
}

func (s *SessionService) emitCompleted(ctx context.Context, session *model.Session) {
	if s.funnelCache != nil {
		_ = s.funnelCache.RecordArrival(ctx, session.CatalogID, session.NodePath)
	}
	s.broadcast(session.CatalogID, EventSessionCompleted, session.ID)
}

func (s *SessionService) load(ctx context.Context, sessionID string) (*model.Session, error) {
	if session, err := s.sessionCache.Get(ctx, sessionID); err == nil && session != nil {
		return session, nil
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) loadSnapshot(ctx context.Context, treeID string) (*model.TreeSnapshot, error) {
	if snapshot, err := s.treeCache.Get(ctx, treeID); err == nil && snapshot != nil {
		return snapshot, nil
	}
	snapshot, err := s.treeRepo.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrTreeNotFound
	}
	_ = s.treeCache.Set(ctx, snapshot)
	return snapshot, nil
}

func (s *SessionService) broadcast(catalogID, event, sessionID string) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMerchant(catalogID, event, sessionID)
	}
}
