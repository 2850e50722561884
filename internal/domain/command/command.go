package command

// Command команда протокола, в URL передается именем
type Command byte

const (
	Sync           Command = 0x0
	SendFile       Command = 0x1
	FolderSync     Command = 0x2
	FolderCreate   Command = 0x3
	FolderDelete   Command = 0x4
	GetItemUnread  Command = 0x5
	ItemOperations Command = 0x6
	Provision      Command = 0x7
	Settings       Command = 0x8
	GetFile        Command = 0x9
	Unknown        Command = 0xFF
)

var names = map[Command]string{
	Sync:           "sync",
	SendFile:       "sendFile",
	FolderSync:     "folderSync",
	FolderCreate:   "folderCreate",
	FolderDelete:   "folderDelete",
	GetItemUnread:  "getItemUnread",
	ItemOperations: "itemOperations",
	Provision:      "provision",
	Settings:       "settings",
	GetFile:        "getFile",
}

// FromCode команда по коду, Unknown для неизвестных
func FromCode(code byte) Command {
	c := Command(code)
	if _, ok := names[c]; ok {
		return c
	}
	return Unknown
}

// FromName команда по имени из URL
func FromName(name string) Command {
	for c, n := range names {
		if n == name {
			return c
		}
	}
	return Unknown
}

func (c Command) Code() byte {
	return byte(c)
}

func (c Command) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "unknown"
}
