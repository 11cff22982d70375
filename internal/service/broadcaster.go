package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToMerchant(catalogID string, msgType string, payload interface{})
}
