package rpcagent

import (
	"context"
	"sync"

	dfs "github.com/rclone/dsync/fs"
)

// MemClient is an in-memory fake Client, standing in for the black-box
// remote agent the way rclone's fstest mock remotes stand in for a real
// cloud backend in unit tests. It records every sent action (for
// send-before-apply assertions) and lets tests preload a FullScan
// response.
type MemClient struct {
	mu sync.Mutex

	scanResults map[string][]ScanEntry
	sent        []dfs.Action
	drains      int
	closed      bool

	// SendErr, when non-nil, is returned by every Send call instead of
	// recording the action, for as long as it stays set (simulates a
	// transport failure for
	// send-before-apply / re-enqueue tests).
	SendErr error
}

// NewMemClient builds an empty MemClient.
func NewMemClient() *MemClient {
	return &MemClient{scanResults: make(map[string][]ScanEntry)}
}

// SetScanResult preloads the response FullScan returns for root.
func (m *MemClient) SetScanResult(root string, entries []ScanEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanResults[root] = entries
}

// FullScan returns the preloaded entries for root, or an empty slice.
func (m *MemClient) FullScan(ctx context.Context, root string) ([]ScanEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanResults[root], nil
}

// Send records the action, or returns SendErr if set.
func (m *MemClient) Send(ctx context.Context, action dfs.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, action)
	return nil
}

// Drain is a no-op (MemClient acknowledges synchronously on Send); it just
// counts calls so tests can assert the 1000-action checkpoint fired.
func (m *MemClient) Drain(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drains++
	return nil
}

// Close marks the client closed.
func (m *MemClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of every action recorded so far, in send order.
func (m *MemClient) Sent() []dfs.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dfs.Action, len(m.sent))
	copy(out, m.sent)
	return out
}

// Drains returns how many times Drain was called.
func (m *MemClient) Drains() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drains
}

// Closed reports whether Close was called.
func (m *MemClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
