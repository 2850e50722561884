package folder

import (
	"strconv"
	"strings"
)

// Child элемент множества детей папки: уникален по ID, упорядочен по (Score, ID)
type Child struct {
	ID    string
	Score int64
}

// ScoreChild ребенок сообщения, у которого id совпадает со score
func ScoreChild(score int64) Child {
	return Child{ID: strconv.FormatInt(score, 10), Score: score}
}

// CompareChildren порядок множества детей
func CompareChildren(a, b Child) int {
	if a.Score != b.Score {
		if a.Score < b.Score {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// ChildID id сообщения в папке: folder-score
func ChildID(folderID string, score int64) string {
	return folderID + string(Separator) + strconv.FormatInt(score, 10)
}

// ScoreOf число после последнего разделителя, 0 если его нет
func ScoreOf(childID string) int64 {
	idx := strings.LastIndexByte(childID, Separator)
	if idx <= 0 || idx+1 >= len(childID) {
		return 0
	}
	n, err := strconv.ParseInt(childID[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// AnchorChild ребенок-якорь для поиска по id. Числовой id трактуется как score.
func AnchorChild(childID string) (Child, bool) {
	n, err := strconv.ParseInt(childID, 10, 64)
	if err != nil {
		return Child{}, false
	}
	return Child{ID: childID, Score: n}, true
}

// LocateChild ищет якорь среди детей по id. Отсутствующий числовой id
// превращается в якорь по score, нечисловой не найден.
func LocateChild(children []Child, childID string) (Child, bool) {
	for _, c := range children {
		if c.ID == childID {
			return c, true
		}
	}
	return AnchorChild(childID)
}
