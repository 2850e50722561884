package file

import "strings"

const idSeparator = ":"

// ID идентификатор файла: владелец, получатель (пользователь или группа) и суффикс
func ID(owner, receiver, suffix string) string {
	return owner + idSeparator + receiver + idSeparator + suffix
}

func parts(fileID string) []string {
	p := strings.SplitN(fileID, idSeparator, 3)
	if len(p) != 3 {
		return nil
	}
	return p
}

// OwnerOf владелец файла
func OwnerOf(fileID string) string {
	if p := parts(fileID); p != nil {
		return p[0]
	}
	return ""
}

// ReceiverOf получатель файла
func ReceiverOf(fileID string) string {
	if p := parts(fileID); p != nil {
		return p[1]
	}
	return ""
}

func IsOwner(username, fileID string) bool {
	return username != "" && OwnerOf(fileID) == username
}

func IsReceiver(username, fileID string) bool {
	return username != "" && ReceiverOf(fileID) == username
}
