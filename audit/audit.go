// Package audit captures before/after snapshots of reconciled writes.
// Records are append-only; writing them is best-effort and must never fail
// the primary data write.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Snapshot is a flat field→value capture of one record.
type Snapshot map[string]string

// JSON serializes the snapshot as structured text for storage. Keys are
// emitted in sorted order, so equal snapshots serialize identically.
func (s Snapshot) JSON() (string, error) {
	if len(s) == 0 {
		return "", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// Equal reports whether two snapshots carry identical fields and values.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for key, value := range s {
		if other[key] != value {
			return false
		}
	}
	return true
}

// SnapshotFromJSON restores a snapshot from its stored text form.
func SnapshotFromJSON(text string) (Snapshot, error) {
	if text == "" {
		return nil, nil
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

// Record is one change-log entry.
type Record struct {
	ID        int64
	BatchID   uuid.UUID
	Table     string
	RecordID  int64
	Operation Operation
	OldData   Snapshot
	NewData   Snapshot
	Actor     string
	LoggedAt  time.Time
}

// Logger appends change records to the change log.
type Logger interface {
	Append(rec Record) error
}
