package command

// Behavior обработчик, выбранный для пары команда/версия
type Behavior int

const (
	BehaviorNull Behavior = iota
	BehaviorSyncLegacy
	BehaviorSync
	BehaviorSendFile
	BehaviorFolderSync
	BehaviorFolderCreate
	BehaviorFolderDelete
	BehaviorGetItemUnread
	BehaviorItemOperations
	BehaviorGetFile
)

// Resolve чистая маршрутизация без состояния. Неизвестные команды и версии,
// а также Provision и Settings получают пустое поведение.
func Resolve(c Command, v Version) Behavior {
	if v != V10 && v != V20 {
		return BehaviorNull
	}
	switch c {
	case Sync:
		if v == V10 {
			return BehaviorSyncLegacy
		}
		return BehaviorSync
	case SendFile:
		return BehaviorSendFile
	case FolderSync:
		return BehaviorFolderSync
	case FolderCreate:
		return BehaviorFolderCreate
	case FolderDelete:
		return BehaviorFolderDelete
	case GetItemUnread:
		return BehaviorGetItemUnread
	case ItemOperations:
		return BehaviorItemOperations
	case GetFile:
		return BehaviorGetFile
	}
	return BehaviorNull
}
