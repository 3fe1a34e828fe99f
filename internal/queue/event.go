// Package queue defines the broker payloads and the consumer that persists
// share-code access logs.
package queue

import (
	"time"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// AccessRecordedQueue carries one message per grant-holder view or download.
const AccessRecordedQueue = "vault.access.recorded"

// AccessRecordedEvent is published when a grant holder views or downloads a
// document, or lists the documents a code exposes.
type AccessRecordedEvent struct {
	ShareCodeID string    `json:"share_code_id"`
	DocumentID  string    `json:"document_id,omitempty"`
	Action      string    `json:"action"`
	IP          string    `json:"ip"`
	AccessedAt  time.Time `json:"accessed_at"`
}

func NewAccessRecordedEvent(e model.AccessLog) AccessRecordedEvent {
	return AccessRecordedEvent{
		ShareCodeID: e.ShareCodeID,
		DocumentID:  e.DocumentID,
		Action:      string(e.Action),
		IP:          e.IP,
		AccessedAt:  e.AccessedAt.UTC(),
	}
}

// AccessLog converts the event back into the row written to access_logs.
func (ev AccessRecordedEvent) AccessLog() model.AccessLog {
	return model.AccessLog{
		ShareCodeID: ev.ShareCodeID,
		DocumentID:  ev.DocumentID,
		Action:      model.AccessAction(ev.Action),
		IP:          ev.IP,
		AccessedAt:  ev.AccessedAt,
	}
}
