package command

import "wesync/internal/domain/sync"

// Version версия протокола
type Version byte

const (
	VersionUnknown Version = 0
	V10            Version = 10
	V20            Version = 20
)

// ParseVersion принимает "1.0"/"10" и "2.0"/"20"
func ParseVersion(s string) Version {
	switch s {
	case "1.0", "10":
		return V10
	case "2.0", "20":
		return V20
	}
	return VersionUnknown
}

func (v Version) String() string {
	switch v {
	case V10:
		return "1.0"
	case V20:
		return "2.0"
	}
	return "unknown"
}

// Quirks поведение движка синхронизации для версии
func (v Version) Quirks() sync.Quirks {
	if v == V10 {
		return sync.Legacy
	}
	return sync.Current
}
