// Package rpcagent is the wire boundary to the remote file-mutation
// executor (spec.md §6). Wire encoding of RPC messages is explicitly out
// of scope (spec.md §1) — this package defines only the semantic contract
// a transport must satisfy, grounded in rclone's `fs/rc` remote-control
// request/response shape (test-only survival in the pack) and the
// drain/ack barrier idiom used throughout rclone's job tracker.
package rpcagent

import (
	"context"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

// ScanEntry is one (subpath, signature) pair returned by FullScan.
type ScanEntry struct {
	Sub dfs.SubPath
	Sig *signature.Signature
}

// Client is the orchestrator's view of the remote agent: a framed,
// bidirectional channel over which actions are sent fire-and-forget, a
// full tree listing can be requested, and outstanding acknowledgements can
// be drained as a back-pressure barrier (spec.md §6).
//
// Implementations must preserve send-before-apply: Send must return only
// after the action has been written to the wire, never after it has been
// applied remotely (acknowledgement is out-of-band, observed only via
// Drain).
type Client interface {
	// FullScan requests the remote's entire (subpath, signature) listing
	// under root. Used once per mapping during INITIAL_SCAN.
	FullScan(ctx context.Context, root string) ([]ScanEntry, error)

	// Send writes one action to the wire. Fire-and-forget: Send returning
	// nil means the action was written, not that it was applied.
	Send(ctx context.Context, action dfs.Action) error

	// Drain blocks until the remote has acknowledged every action sent
	// before this call. Called at least every 1000 actions and at the end
	// of each phase (spec.md §4.6, §4.7).
	Drain(ctx context.Context) error

	// Close tears down the underlying transport.
	Close() error
}
