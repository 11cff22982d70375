package model

// LeafArrival counts how many sessions ended in one leaf.
type LeafArrival struct {
	NodePath string `json:"nodePath"`
	Count    int64  `json:"count"`
}

// CatalogAnalytics is the funnel summary for one catalog.
type CatalogAnalytics struct {
	CatalogID         string        `json:"catalogId"`
	SessionsStarted   int64         `json:"sessionsStarted"`
	SessionsCompleted int64         `json:"sessionsCompleted"`
	AveragePathLength float64       `json:"averagePathLength"`
	TopLeaves         []LeafArrival `json:"topLeaves"`
}

// ReplayCheck is the result of re-running a stored session's answers through
// its tree snapshot.
type ReplayCheck struct {
	SessionID  string `json:"sessionId"`
	StoredPath string `json:"storedPath"`
	ReplayPath string `json:"replayPath"`
	Consistent bool   `json:"consistent"`
}
