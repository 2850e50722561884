package folder

import "strings"

// Separator разделитель сегментов идентификатора папки
const Separator = '-'

// ID разобранный идентификатор папки: owner-tag-suffix
type ID struct {
	Type   Type
	Owner  string
	Suffix string
}

// Parse разбирает строку в ID. Никогда не падает: некорректный ввод дает Unknown.
func Parse(s string) ID {
	id := ID{Type: Unknown}

	idx1 := strings.IndexByte(s, Separator)
	if idx1 < 0 {
		return id
	}
	id.Owner = s[:idx1]

	rest := s[idx1+1:]
	idx2 := strings.IndexByte(rest, Separator)
	if idx2 < 0 {
		if rest == rootTag {
			id.Type = Root
		}
		return id
	}

	id.Suffix = rest[idx2+1:]
	id.Type = TypeFromTag(rest[:idx2])
	return id
}

// String каноническое строковое представление
func (id ID) String() string {
	switch id.Type {
	case Root:
		return OnRoot(id.Owner)
	case Unknown:
		return id.Owner + string(Separator) + unknownTag
	}
	return compose(id.Owner, id.Type.Tag(), id.Suffix)
}

// Peer собеседник для диалоговых папок, иначе пустая строка
func (id ID) Peer() string {
	if id.Type.IsConversation() {
		return id.Suffix
	}
	return ""
}

// Property имя свойства для папок свойств
func (id ID) Property() string {
	if id.Type == Property {
		return id.Suffix
	}
	return ""
}

// GroupID идентификатор группы для групповых папок
func (id ID) GroupID() string {
	if id.Type == Group {
		return id.Suffix
	}
	return ""
}

// SpanID идентификатор составного сообщения для папок данных
func (id ID) SpanID() string {
	if id.Type == Data {
		return id.Suffix
	}
	return ""
}

func OnRoot(owner string) string {
	return owner + string(Separator) + rootTag
}

func OnProperty(owner, prop string) string {
	return compose(owner, propTag, prop)
}

func OnConversation(owner, peer string) string {
	return compose(owner, convTag, peer)
}

func OnConversationAlt(owner, peer string) string {
	return compose(owner, con2Tag, peer)
}

func OnGroup(owner, groupID string) string {
	return compose(owner, grouTag, groupID)
}

func OnData(owner, spanID string) string {
	return compose(owner, dataTag, spanID)
}

// TypeOf тип папки без полного разбора
func TypeOf(folderID string) Type {
	return Parse(folderID).Type
}

// Owner владелец папки: первый сегмент, пустая строка если его нет
func Owner(folderID string) string {
	idx := strings.IndexByte(folderID, Separator)
	if idx <= 0 {
		return ""
	}
	return folderID[:idx]
}

// BelongsTo проверяет принадлежность папки пользователю только по первому сегменту
func BelongsTo(folderID, username string) bool {
	return username == Owner(folderID)
}

func compose(owner, tag, suffix string) string {
	return owner + string(Separator) + tag + string(Separator) + suffix
}
