package folder

// Type тип папки, определяется тегом во втором сегменте идентификатора
type Type uint8

const (
	Unknown Type = iota
	Root
	Property
	Conversation
	ConversationAlt
	Group
	Data
)

const (
	rootTag = "root"
	propTag = "prop"
	convTag = "conv"
	con2Tag = "con2"
	grouTag = "grou"
	dataTag = "data"

	unknownTag = "unknown"
)

var typeTags = map[Type]string{
	Root:            rootTag,
	Property:        propTag,
	Conversation:    convTag,
	ConversationAlt: con2Tag,
	Group:           grouTag,
	Data:            dataTag,
}

// TypeFromTag возвращает тип по тегу, Unknown для неизвестных тегов
func TypeFromTag(tag string) Type {
	switch tag {
	case propTag:
		return Property
	case convTag:
		return Conversation
	case con2Tag:
		return ConversationAlt
	case grouTag:
		return Group
	case dataTag:
		return Data
	}
	return Unknown
}

// Tag возвращает тег типа для идентификатора
func (t Type) Tag() string {
	if tag, ok := typeTags[t]; ok {
		return tag
	}
	return unknownTag
}

func (t Type) String() string {
	switch t {
	case Root:
		return "Root"
	case Property:
		return "Property"
	case Conversation:
		return "Conversation"
	case ConversationAlt:
		return "ConversationAlt"
	case Group:
		return "Group"
	case Data:
		return "Data"
	}
	return "Unknown"
}

// IsConversation true для обоих вариантов диалоговых папок
func (t Type) IsConversation() bool {
	return t == Conversation || t == ConversationAlt
}
