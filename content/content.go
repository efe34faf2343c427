// Package content implements the File-Content Streamer (spec.md §4.7):
// block-level delta transfer of one file's body, run after metadata has
// already put the right kind of node at the destination. Grounded in
// backend/local's positioned-read handling of a file's body
// (localOpenFile's offset-based Read/ReadAt path) and reusing the
// block-hash comparison idea already applied once in signature.Compute.
package content

import (
	"context"
	"io"
	"os"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/rpcagent"
	"github.com/rclone/dsync/signature"
	"github.com/rclone/dsync/vfs"
)

// drainEvery is how many streamed files trigger an RPC acknowledgement
// drain (spec.md §4.7 step 4).
const drainEvery = 1000

// Streamer streams file content block-by-block to the remote, skipping
// blocks whose hash already matches, and drains the RPC client
// periodically.
type Streamer struct {
	client rpcagent.Client
	vfs    *vfs.VFS

	streamed int
}

// New builds a Streamer writing to client and mirroring into v.
func New(client rpcagent.Client, v *vfs.VFS) *Streamer {
	return &Streamer{client: client, vfs: v}
}

// Stream transfers the content of one File-vs-(File|absent) triple. abs is
// the absolute local path to read from; dest/sub/local/remote identify the
// destination and the diffed signatures (local must be KindFile; remote
// may be nil or any kind, though by construction of metasync.Actions it is
// nil or KindFile by the time content streaming runs).
func (s *Streamer) Stream(ctx context.Context, abs, dest string, sub dfs.SubPath, local, remote *signature.Signature) error {
	if local == nil || local.Kind != signature.KindFile {
		return nil
	}

	var otherHashes []dfs.Bytes
	var otherSize uint64
	if remote != nil && remote.Kind == signature.KindFile {
		otherHashes = remote.BlockHashes
		otherSize = remote.Size
	}

	f, err := os.Open(abs)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, dfs.B)
	for i, hash := range local.BlockHashes {
		if i < len(otherHashes) && hash.Equal(otherHashes[i]) {
			continue
		}
		n, err := f.ReadAt(buf, int64(i)*dfs.B)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return err
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		action := dfs.WriteChunk(dest, sub, i, hash, data)
		if err := s.client.Send(ctx, action); err != nil {
			return err
		}
		s.vfs.ApplyAction(action)
	}

	if local.Size != otherSize {
		action := dfs.SetSize(dest, sub, local.Size)
		if err := s.client.Send(ctx, action); err != nil {
			return err
		}
		s.vfs.ApplyAction(action)
	}

	s.streamed++
	if s.streamed%drainEvery == 0 {
		return s.client.Drain(ctx)
	}
	return nil
}
