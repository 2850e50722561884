package pebble

import (
	"encoding/binary"

	"wesync/internal/domain/folder"
)

// Раскладка ключей:
//
//	fld/<folder>                               признак существования
//	cnt/<folder>                               счетчик, 8 байт BE
//	chd/<folder>\0<score><id>                  дети в порядке (score, id)
//	cix/<folder>\0<id>                         score ребенка по id
//	chg/<folder>\0<order key><add>             журнал, значение ChildID
//	msg/<id>                                   сообщение в JSON
//	fil/<id>                                   собранный файл в JSON
const (
	prefixFolder  = "fld/"
	prefixCounter = "cnt/"
	prefixChild   = "chd/"
	prefixIndex   = "cix/"
	prefixChange  = "chg/"
	prefixMessage = "msg/"
	prefixFile    = "fil/"
)

func folderKey(folderID string) []byte {
	return []byte(prefixFolder + folderID)
}

func counterKey(folderID string) []byte {
	return []byte(prefixCounter + folderID)
}

func scoped(prefix, folderID string) []byte {
	key := make([]byte, 0, len(prefix)+len(folderID)+1)
	key = append(key, prefix...)
	key = append(key, folderID...)
	return append(key, 0)
}

func childPrefix(folderID string) []byte {
	return scoped(prefixChild, folderID)
}

func indexPrefix(folderID string) []byte {
	return scoped(prefixIndex, folderID)
}

func changePrefix(folderID string) []byte {
	return scoped(prefixChange, folderID)
}

// encodeScore переворачивает знаковый бит, чтобы побайтовый порядок совпадал с числовым
func encodeScore(dst []byte, score int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(score)^(1<<63))
}

func decodeScore(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

func childKey(folderID string, c folder.Child) []byte {
	key := encodeScore(childPrefix(folderID), c.Score)
	return append(key, c.ID...)
}

func decodeChild(prefixLen int, key []byte) folder.Child {
	rest := key[prefixLen:]
	return folder.Child{Score: decodeScore(rest[:8]), ID: string(rest[8:])}
}

func indexKey(folderID, childID string) []byte {
	return append(indexPrefix(folderID), childID...)
}

// changeKey повторяет folder.CompareChanges: числовые id по значению раньше
// нечисловых, нечисловые побайтово, удаление раньше добавления.
func changeKey(folderID string, c folder.Change) []byte {
	key := changePrefix(folderID)
	if score, ok := c.Score(); ok {
		key = append(key, 0)
		key = encodeScore(key, score)
	} else {
		key = append(key, 1)
		key = append(key, c.ChildID...)
		key = append(key, 0)
	}
	if c.IsAdd {
		return append(key, 1)
	}
	return append(key, 0)
}

func decodeChange(key, val []byte) folder.Change {
	return folder.Change{ChildID: string(val), IsAdd: key[len(key)-1] == 1}
}

func messageKey(id string) []byte {
	return []byte(prefixMessage + id)
}

func fileKey(id string) []byte {
	return []byte(prefixFile + id)
}

// prefixEnd наименьший ключ, больший всех ключей с данным префиксом
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// successor ключ сразу после key
func successor(key []byte) []byte {
	out := make([]byte, len(key)+1)
	copy(out, key)
	return out
}

func encodeCounter(n int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(n))
}

func decodeCounter(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}
