package folder

import (
	"strconv"
	"strings"
)

const (
	groupPrefix    = "G"
	groupSeparator = '$'

	// PropMembers свойство группы со списком участников
	PropMembers = groupPrefix + "Members"
	// PropHistory свойство группы с историей сообщений
	PropHistory = groupPrefix + "History"
)

// GroupID идентификатор группы: G$creator$seq
func GroupID(creator string, seq int64) string {
	return groupPrefix + string(groupSeparator) + creator + string(groupSeparator) + strconv.FormatInt(seq, 10)
}

func IsGroupID(id string) bool {
	return strings.HasPrefix(id, groupPrefix+string(groupSeparator))
}

func MembersFolder(groupID string) string {
	return OnProperty(groupID, PropMembers)
}

func HistoryFolder(groupID string) string {
	return OnProperty(groupID, PropHistory)
}

// IsGroupProperty true для служебных свойств группы
func IsGroupProperty(prop string) bool {
	return prop == PropMembers || prop == PropHistory
}
