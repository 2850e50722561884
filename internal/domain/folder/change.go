package folder

import (
	"strconv"
	"strings"
)

// Change запись журнала изменений папки
type Change struct {
	ChildID string
	IsAdd   bool
}

func Added(childID string) Change {
	return Change{ChildID: childID, IsAdd: true}
}

func Removed(childID string) Change {
	return Change{ChildID: childID}
}

// AddedScore изменение-добавление для дочернего элемента с числовым id
func AddedScore(score int64) Change {
	return Added(strconv.FormatInt(score, 10))
}

func (c Change) String() string {
	if c.IsAdd {
		return "+" + c.ChildID
	}
	return "-" + c.ChildID
}

// ParseChange разбирает "+id" или "-id"
func ParseChange(s string) (Change, bool) {
	if len(s) <= 1 {
		return Change{}, false
	}
	switch s[0] {
	case '+':
		return Added(s[1:]), true
	case '-':
		return Removed(s[1:]), true
	}
	return Change{}, false
}

// Score числовое значение ChildID
func (c Change) Score() (int64, bool) {
	n, err := strconv.ParseInt(c.ChildID, 10, 64)
	return n, err == nil
}

// CompareChanges задает порядок журнала: числовые id раньше нечисловых и
// сравниваются по значению, нечисловые (записи корневой папки) лексикографически.
// При равенстве id удаление идет раньше добавления.
func CompareChanges(a, b Change) int {
	as, aNum := a.Score()
	bs, bNum := b.Score()

	switch {
	case aNum && bNum:
		if as != bs {
			if as < bs {
				return -1
			}
			return 1
		}
	case aNum:
		return -1
	case bNum:
		return 1
	default:
		if c := strings.Compare(a.ChildID, b.ChildID); c != 0 {
			return c
		}
	}

	if a.IsAdd == b.IsAdd {
		return 0
	}
	if a.IsAdd {
		return 1
	}
	return -1
}
