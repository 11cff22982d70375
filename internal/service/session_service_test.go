package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalogfinder/internal/model"
	"catalogfinder/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory doubles for the Mongo repos and Redis caches.

type fakeSessionRepo struct {
	sessions  map[string]*model.Session
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	s.StartedAt = time.Now()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) Update(_ context.Context, s *model.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByCatalogID(_ context.Context, catalogID string) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range f.sessions {
		if s.CatalogID == catalogID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) CountByCatalogID(_ context.Context, catalogID string, status model.SessionStatus) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.CatalogID == catalogID && (status == "" || s.Status == status) {
			n++
		}
	}
	return n, nil
}

type fakeTreeRepo struct {
	byID   map[string]*model.TreeSnapshot
	latest map[string]*model.TreeSnapshot
	nextID int
}

func newFakeTreeRepo() *fakeTreeRepo {
	return &fakeTreeRepo{
		byID:   make(map[string]*model.TreeSnapshot),
		latest: make(map[string]*model.TreeSnapshot),
	}
}

func (f *fakeTreeRepo) Insert(_ context.Context, s *model.TreeSnapshot) (string, error) {
	f.nextID++
	s.ID = string(rune('a' + f.nextID))
	s.CreatedAt = time.Now()
	f.byID[s.ID] = s
	f.latest[s.CatalogID] = s
	return s.ID, nil
}

func (f *fakeTreeRepo) GetByID(_ context.Context, id string) (*model.TreeSnapshot, error) {
	return f.byID[id], nil
}

func (f *fakeTreeRepo) GetLatestByCatalogID(_ context.Context, catalogID string) (*model.TreeSnapshot, error) {
	return f.latest[catalogID], nil
}

type fakeSessionCache struct{ data map[string]*model.Session }

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{data: make(map[string]*model.Session)}
}

func (f *fakeSessionCache) Set(_ context.Context, s *model.Session) error {
	f.data[s.ID] = s
	return nil
}

func (f *fakeSessionCache) Get(_ context.Context, id string) (*model.Session, error) {
	return f.data[id], nil
}

func (f *fakeSessionCache) Delete(_ context.Context, id string) error {
	delete(f.data, id)
	return nil
}

type fakeTreeCache struct{ data map[string]*model.TreeSnapshot }

func newFakeTreeCache() *fakeTreeCache {
	return &fakeTreeCache{data: make(map[string]*model.TreeSnapshot)}
}

func (f *fakeTreeCache) Set(_ context.Context, s *model.TreeSnapshot) error {
	f.data[s.ID] = s
	return nil
}

func (f *fakeTreeCache) Get(_ context.Context, id string) (*model.TreeSnapshot, error) {
	return f.data[id], nil
}

type fakeFunnelCache struct{ arrivals map[string]map[string]int64 }

func newFakeFunnelCache() *fakeFunnelCache {
	return &fakeFunnelCache{arrivals: make(map[string]map[string]int64)}
}

func (f *fakeFunnelCache) RecordArrival(_ context.Context, catalogID, leafPath string) error {
	if f.arrivals[catalogID] == nil {
		f.arrivals[catalogID] = make(map[string]int64)
	}
	f.arrivals[catalogID][leafPath]++
	return nil
}

func (f *fakeFunnelCache) GetTop(_ context.Context, catalogID string, _ int) ([]model.LeafArrival, error) {
	var out []model.LeafArrival
	for path, count := range f.arrivals[catalogID] {
		out = append(out, model.LeafArrival{NodePath: path, Count: count})
	}
	return out, nil
}

type fakeBroadcaster struct{ events []string }

func (f *fakeBroadcaster) BroadcastToMerchant(_ string, msgType string, _ interface{}) {
	f.events = append(f.events, msgType)
}

func seedSnapshot(t *testing.T, repo *fakeTreeRepo, catalogID string, headers []string, rows [][]string, opts tree.Options) *model.TreeSnapshot {
	t.Helper()
	products, featureNames, err := tree.Encode(headers, rows)
	require.NoError(t, err)
	root, err := tree.Build(products, featureNames, opts)
	require.NoError(t, err)

	snapshot := &model.TreeSnapshot{
		CatalogID:    catalogID,
		Root:         tree.ToDoc(root),
		Metrics:      tree.Metrics(root, 0),
		Profiles:     tree.Profile(products, featureNames),
		FeatureNames: featureNames,
		Options:      opts,
	}
	_, err = repo.Insert(context.Background(), snapshot)
	require.NoError(t, err)
	return snapshot
}

func newSessionFixture(t *testing.T) (*SessionService, *fakeSessionRepo, *fakeTreeRepo, *fakeFunnelCache) {
	t.Helper()
	sessionRepo := newFakeSessionRepo()
	treeRepo := newFakeTreeRepo()
	funnel := newFakeFunnelCache()
	svc := NewSessionService(sessionRepo, treeRepo, newFakeSessionCache(), newFakeTreeCache(), funnel, NewQuestionService())
	return svc, sessionRepo, treeRepo, funnel
}

func TestSessionWalkToLeaf(t *testing.T) {
	ctx := context.Background()
	svc, _, treeRepo, funnel := newSessionFixture(t)

	headers := []string{"price", "rating"}
	rows := [][]string{
		{"10", "4.5"}, {"20", "3.0"}, {"30", "5.0"}, {"40", "2.5"}, {"50", "4.0"},
	}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 4, MinLeafSize: 1})

	session, err := svc.Start(ctx, "cat1", "shopper1")
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, session.Status)
	require.NotNil(t, svc.CurrentQuestion(session))

	// Always answer left; a finite tree must terminate.
	for i := 0; i < 10 && session.Status == model.SessionActive; i++ {
		session, err = svc.Answer(ctx, session.ID, tree.SideLeft)
		require.NoError(t, err)
	}

	assert.Equal(t, model.SessionCompleted, session.Status)
	assert.Nil(t, svc.CurrentQuestion(session))
	assert.NotEmpty(t, session.Recommendations)
	require.NotNil(t, session.CompletedAt)

	// Every step on the walk carries its answer.
	for _, step := range session.Steps {
		assert.NotNil(t, step.Answer)
		assert.Equal(t, tree.SideLeft, step.Answer.Choice)
	}
	assert.Equal(t, len(session.Steps), len(session.NodePath))

	// The leaf arrival was recorded for the funnel.
	top, err := funnel.GetTop(ctx, "cat1", 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, session.NodePath, top[0].NodePath)
}

func TestSessionSingleLeafTreeCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	svc, _, treeRepo, _ := newSessionFixture(t)

	headers := []string{"price", "rating"}
	rows := [][]string{
		{"10", "4.5"}, {"10", "4.5"}, {"10", "4.5"}, {"10", "4.5"},
	}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 5, MinLeafSize: 1})

	session, err := svc.Start(ctx, "cat1", "shopper1")
	require.NoError(t, err)

	assert.Equal(t, model.SessionCompleted, session.Status)
	assert.Len(t, session.Recommendations, 4)
	assert.Nil(t, svc.CurrentQuestion(session))
}

func TestSessionEventsStayOrdered(t *testing.T) {
	ctx := context.Background()
	svc, _, treeRepo, _ := newSessionFixture(t)
	bc := &fakeBroadcaster{}
	svc.SetBroadcaster(bc)

	// Single-leaf tree: started must still precede completed.
	headers := []string{"price"}
	rows := [][]string{{"1"}, {"1"}, {"1"}}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 3, MinLeafSize: 1})

	session, err := svc.Start(ctx, "cat1", "shopper1")
	require.NoError(t, err)
	require.Equal(t, model.SessionCompleted, session.Status)
	assert.Equal(t, []string{EventSessionStarted, EventSessionCompleted}, bc.events)

	// A multi-step walk emits started, then answers, then completed.
	bc.events = nil
	seedSnapshot(t, treeRepo, "cat2",
		[]string{"price", "rating"},
		[][]string{{"10", "4.5"}, {"20", "3.0"}, {"30", "5.0"}, {"40", "2.5"}, {"50", "4.0"}},
		tree.Options{MaxDepth: 4, MinLeafSize: 1})
	session, err = svc.Start(ctx, "cat2", "shopper2")
	require.NoError(t, err)
	for i := 0; i < 10 && session.Status == model.SessionActive; i++ {
		session, err = svc.Answer(ctx, session.ID, tree.SideLeft)
		require.NoError(t, err)
	}
	require.NotEmpty(t, bc.events)
	assert.Equal(t, EventSessionStarted, bc.events[0])
	assert.Equal(t, EventSessionCompleted, bc.events[len(bc.events)-1])
	for _, ev := range bc.events[1 : len(bc.events)-1] {
		assert.Equal(t, EventAnswerRecorded, ev)
	}
}

func TestSessionStartFailureEmitsNothing(t *testing.T) {
	ctx := context.Background()
	svc, sessionRepo, treeRepo, funnel := newSessionFixture(t)
	bc := &fakeBroadcaster{}
	svc.SetBroadcaster(bc)
	sessionRepo.createErr = errors.New("insert failed")

	headers := []string{"price"}
	rows := [][]string{{"1"}, {"1"}, {"1"}}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 3, MinLeafSize: 1})

	_, err := svc.Start(ctx, "cat1", "shopper1")
	require.Error(t, err)

	// No events and no funnel count for a session that was never stored.
	assert.Empty(t, bc.events)
	top, err := funnel.GetTop(ctx, "cat1", 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestSessionResume(t *testing.T) {
	ctx := context.Background()
	svc, _, treeRepo, _ := newSessionFixture(t)

	headers := []string{"price", "rating"}
	rows := [][]string{
		{"10", "4.5"}, {"20", "3.0"}, {"30", "5.0"}, {"40", "2.5"}, {"50", "4.0"},
	}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 4, MinLeafSize: 1})

	session, err := svc.Start(ctx, "cat1", "shopper1")
	require.NoError(t, err)
	session, err = svc.Answer(ctx, session.ID, tree.SideLeft)
	require.NoError(t, err)

	resumed, question, err := svc.Resume(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.NodePath, resumed.NodePath)
	if resumed.Status == model.SessionActive {
		require.NotNil(t, question)
		assert.Equal(t, session.NodePath, question.NodePath)
	} else {
		assert.Nil(t, question)
		assert.NotEmpty(t, resumed.Recommendations)
	}

	_, _, err = svc.Resume(ctx, "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionAnswerAfterCompletion(t *testing.T) {
	ctx := context.Background()
	svc, _, treeRepo, _ := newSessionFixture(t)

	headers := []string{"price"}
	rows := [][]string{{"1"}, {"1"}, {"1"}}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 3, MinLeafSize: 1})

	session, err := svc.Start(ctx, "cat1", "shopper1")
	require.NoError(t, err)
	require.Equal(t, model.SessionCompleted, session.Status)

	_, err = svc.Answer(ctx, session.ID, tree.SideLeft)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestSessionErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.Start(ctx, "missing", "shopper1")
	assert.ErrorIs(t, err, ErrTreeNotFound)

	_, err = svc.Answer(ctx, "no-such-session", tree.SideLeft)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Get(ctx, "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAnalyticsSummaryAndReplay(t *testing.T) {
	ctx := context.Background()
	svc, sessionRepo, treeRepo, funnel := newSessionFixture(t)
	analytics := NewAnalyticsService(sessionRepo, treeRepo, funnel)

	headers := []string{"price", "rating"}
	rows := [][]string{
		{"10", "4.5"}, {"20", "3.0"}, {"30", "5.0"}, {"40", "2.5"}, {"50", "4.0"},
	}
	seedSnapshot(t, treeRepo, "cat1", headers, rows, tree.Options{MaxDepth: 4, MinLeafSize: 1})

	session, err := svc.Start(ctx, "cat1", "shopper1")
	require.NoError(t, err)
	for i := 0; i < 10 && session.Status == model.SessionActive; i++ {
		session, err = svc.Answer(ctx, session.ID, tree.SideRight)
		require.NoError(t, err)
	}
	require.Equal(t, model.SessionCompleted, session.Status)

	summary, err := analytics.Summary(ctx, "cat1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.SessionsStarted)
	assert.Equal(t, int64(1), summary.SessionsCompleted)
	assert.Greater(t, summary.AveragePathLength, 0.0)
	require.Len(t, summary.TopLeaves, 1)
	assert.Equal(t, session.NodePath, summary.TopLeaves[0].NodePath)

	// Replaying the stored answers recovers the stored path exactly.
	check, err := analytics.VerifySession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, session.NodePath, check.ReplayPath)
}
