package notice

import "wesync/internal/domain/message"

// Unread число непрочитанных изменений в папке
type Unread struct {
	FolderID string        `json:"folder_id"`
	Num      int           `json:"num"`
	Content  *message.Meta `json:"content,omitempty"`
}

// Notice уведомление получателю. ExpectAck перечисляет id предыдущих
// неподтвержденных сообщений, чтобы клиент мог обнаружить пропуски.
type Notice struct {
	Unread    []Unread        `json:"unread"`
	Messages  []*message.Meta `json:"messages,omitempty"`
	ExpectAck []string        `json:"expect_ack,omitempty"`
}
