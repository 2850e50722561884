package message

import "encoding/json"

// Meta сообщение, хранимое в папках. Содержимое непрозрачно для сервера.
type Meta struct {
	ID             string `json:"id,omitempty"`
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
	Type           Type   `json:"type"`
	Content        []byte `json:"content,omitempty"`
	Thumbnail      []byte `json:"thumbnail,omitempty"`
	Time           int64  `json:"time,omitempty"`
	SpanID         string `json:"span_id,omitempty"`
	SpanSequenceNo int    `json:"span_sequence_no,omitempty"`
	SpanLimit      int    `json:"span_limit,omitempty"`
	PrestoreID     string `json:"prestore_id,omitempty"`
}

// Size размер сообщения в сериализованном виде
func (m *Meta) Size() int {
	data, err := json.Marshal(m)
	if err != nil {
		return 0
	}
	return len(data)
}

// HasSpan true если сообщение является частью составного
func (m *Meta) HasSpan() bool {
	return m.SpanID != ""
}

// WithID копия сообщения с другим id
func (m *Meta) WithID(id string) *Meta {
	cp := *m
	cp.ID = id
	return &cp
}

// Refine облегченная версия для уведомлений: полное содержимое остается
// только у текстовых и смешанных сообщений.
func Refine(m *Meta) *Meta {
	if m == nil {
		return nil
	}
	out := &Meta{
		ID:             m.ID,
		From:           m.From,
		Type:           m.Type,
		SpanID:         m.SpanID,
		SpanSequenceNo: m.SpanSequenceNo,
	}
	switch m.Type {
	case TypeText, TypeMixed:
		out.Content = m.Content
	default:
		out.Content = []byte(m.Type.String())
	}
	return out
}

// Indicator ответ отправителю: исходный клиентский id и присвоенный сервером
func Indicator(m *Meta, newID string) *Meta {
	return &Meta{
		ID:        m.ID,
		Type:      m.Type,
		Content:   []byte(newID),
		Time:      m.Time,
		SpanID:    m.SpanID,
		SpanLimit: m.SpanLimit,
	}
}
