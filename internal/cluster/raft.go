// Package cluster wires a hashicorp/raft node for the Raft-backed store.
package cluster

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/heysubinoy/pyazkv/pkg/config"
)

const (
	maxPool          = 3
	transportTimeout = 10 * time.Second
	retainSnapshots  = 2
)

// NewRaft starts a raft node for cfg applying committed entries to fsm.
// Logs and stable state go to a bolt file under cfg.RaftData. When
// cfg.RaftLeader is set the node bootstraps a single-server cluster.
func NewRaft(cfg *config.Config, fsm raft.FSM, logger hclog.Logger) (*raft.Raft, error) {
	if err := os.MkdirAll(cfg.RaftData, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create raft data dir: %w", err)
	}

	rc := raft.DefaultConfig()
	rc.LocalID = raft.ServerID(cfg.NodeID)
	rc.Logger = logger.Named("raft")

	addr, err := net.ResolveTCPAddr("tcp", cfg.RaftAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid raft address %q: %w", cfg.RaftAddr, err)
	}
	transport, err := raft.NewTCPTransportWithLogger(cfg.RaftAddr, addr, maxPool, transportTimeout, rc.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create raft transport: %w", err)
	}

	snapshots, err := raft.NewFileSnapshotStoreWithLogger(cfg.RaftData, retainSnapshots, rc.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	boltStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.RaftData, "raft.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create bolt store: %w", err)
	}

	r, err := raft.NewRaft(rc, fsm, boltStore, boltStore, snapshots, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to start raft: %w", err)
	}

	if cfg.RaftLeader {
		hasState, err := raft.HasExistingState(boltStore, boltStore, snapshots)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect raft state: %w", err)
		}
		if !hasState {
			bootstrap := raft.Configuration{
				Servers: []raft.Server{{ID: rc.LocalID, Address: transport.LocalAddr()}},
			}
			if err := r.BootstrapCluster(bootstrap).Error(); err != nil {
				return nil, fmt.Errorf("failed to bootstrap cluster: %w", err)
			}
			logger.Info("bootstrapped raft cluster", "id", cfg.NodeID, "addr", cfg.RaftAddr)
		}
	}

	return r, nil
}

// Join adds a voter to the cluster. Must be called on the leader.
func Join(r *raft.Raft, id, addr string, timeout time.Duration) error {
	f := r.AddVoter(raft.ServerID(id), raft.ServerAddress(addr), 0, timeout)
	if err := f.Error(); err != nil {
		return fmt.Errorf("failed to add voter %s at %s: %w", id, addr, err)
	}
	return nil
}
