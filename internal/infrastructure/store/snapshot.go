package store

import (
	"encoding/json"
	"time"
)

// SnapshotThreshold is how many events an aggregate accumulates before
// its state is snapshotted to shortcut future replays
const SnapshotThreshold = 10

// Snapshot is a point-in-time serialization of an aggregate
type Snapshot struct {
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	State         json.RawMessage `json:"state"`
	CreatedAt     time.Time       `json:"created_at"`
}
