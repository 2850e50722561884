package sync

// Quirks наблюдаемые различия между ревизиями протокола
type Quirks struct {
	Revision string
	// HistoryRedirect групповые папки читают детей и сообщения из истории группы
	HistoryRedirect bool
	// SelectiveAck поддержка выборочного подтверждения
	SelectiveAck bool
	// ExpandSubfolders полная синхронизация раскрывает подпапки составных сообщений
	ExpandSubfolders bool
	// SizeCheck отбрасывать слишком большие сообщения
	SizeCheck bool
	// DeleteTombstones удаления в журнале отдаются клиенту записями с одним id
	DeleteTombstones bool
	// Spans составные сообщения раскладываются по подпапкам
	Spans bool
	// AsyncNotice уведомления идут через пул с полным сообщением и expect-ack
	AsyncNotice bool
}

var (
	Legacy = Quirks{
		Revision:         "1.0",
		HistoryRedirect:  true,
		DeleteTombstones: true,
	}
	Current = Quirks{
		Revision:         "2.0",
		SelectiveAck:     true,
		ExpandSubfolders: true,
		SizeCheck:        true,
		Spans:            true,
		AsyncNotice:      true,
	}
)
