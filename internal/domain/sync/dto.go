package sync

import "wesync/internal/domain/message"

// Request запрос синхронизации одной папки
type Request struct {
	FolderID           string          `json:"folder_id" minLength:"1"`
	Key                string          `json:"key" minLength:"1" example:"0"`
	IsFullSync         bool            `json:"is_full_sync,omitempty"`
	IsForward          bool            `json:"is_forward,omitempty"`
	HintChildID        string          `json:"hint_child_id,omitempty"`
	ClientChanges      []*message.Meta `json:"client_changes,omitempty"`
	SelectiveAck       []string        `json:"selective_ack,omitempty"`
	IsSiblingInHarmony *bool           `json:"is_sibling_in_harmony,omitempty"`
	IsSendOnly         bool            `json:"is_send_only,omitempty"`
}

// Response страница изменений и индикаторы примененных клиентских изменений
type Response struct {
	FolderID      string          `json:"folder_id"`
	IsFullSync    bool            `json:"is_full_sync"`
	HasNext       bool            `json:"has_next"`
	ServerChanges []*message.Meta `json:"server_changes,omitempty"`
	ClientChanges []*message.Meta `json:"client_changes,omitempty"`
	NextKey       string          `json:"next_key"`
}
