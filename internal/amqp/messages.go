package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncOp says what a mirror should do with a record.
type SyncOp string

const (
	OpUpsert SyncOp = "upsert"
	OpDelete SyncOp = "delete"
)

// TournamentSyncMessage carries only the record ID; consumers re-read the
// record from the store so a stale message never overwrites newer data.
type TournamentSyncMessage struct {
	ID        string    `json:"id"`
	Op        SyncOp    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTournamentSyncMessage(id string, op SyncOp) *TournamentSyncMessage {
	return &TournamentSyncMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *TournamentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TournamentSyncMessageFromJSON decodes and checks a message body.
func TournamentSyncMessageFromJSON(data []byte) (*TournamentSyncMessage, error) {
	var msg TournamentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("sync message without id")
	}
	switch msg.Op {
	case OpUpsert, OpDelete:
	case "":
		msg.Op = OpUpsert
	default:
		return nil, fmt.Errorf("unknown sync op %q", msg.Op)
	}
	return &msg, nil
}
