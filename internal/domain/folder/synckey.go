package folder

import "strings"

const (
	// BootstrapKey ключ первой синхронизации
	BootstrapKey = "0"

	keySeparator = '.'
	fullTag      = 'F'
)

// EmptyKey ключ без позиции: синхронизация завершена
func EmptyKey(folderID string, full bool) string {
	if full {
		return folderID + string(keySeparator) + string(fullTag)
	}
	return folderID + string(keySeparator)
}

// KeyOnChild ключ полной синхронизации, указывающий на ребенка
func KeyOnChild(folderID, childID string) string {
	return folderID + string(keySeparator) + string(fullTag) + childID
}

// KeyOnChange ключ инкрементальной синхронизации, указывающий на изменение
func KeyOnChange(folderID string, c Change) string {
	return folderID + string(keySeparator) + c.String()
}

// IsFullKey true если маркер начинается с F
func IsFullKey(key string) bool {
	idx := strings.LastIndexByte(key, keySeparator)
	return idx != len(key)-1 && key[idx+1] == fullTag
}

// IsEmptyKey true если после последнего разделителя не больше одного символа.
// Ключ "0" тоже считается пустым.
func IsEmptyKey(key string) bool {
	return strings.LastIndexByte(key, keySeparator) >= len(key)-2
}

// SplitKey делит ключ на папку и маркер. Для ключа без разделителя ok=false.
func SplitKey(key string) (folderID, marker string, ok bool) {
	idx := strings.LastIndexByte(key, keySeparator)
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

// Marker текст после последнего разделителя
func Marker(key string) (string, bool) {
	_, marker, ok := SplitKey(key)
	return marker, ok
}

// Position позиция, закодированная в ключе (id ребенка или изменения) без тега
func Position(key string) (string, bool) {
	marker, ok := Marker(key)
	if !ok || len(marker) <= 1 {
		return "", false
	}
	return marker[1:], true
}
