package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wesync/internal/domain/sync"
)

func TestFromCode(t *testing.T) {
	for c, name := range names {
		assert.Equal(t, c, FromCode(c.Code()), name)
		assert.Equal(t, c, FromName(name))
		assert.Equal(t, name, c.String())
	}
	assert.Equal(t, Unknown, FromCode(0x42))
	assert.Equal(t, Unknown, FromCode(0xFF))
	assert.Equal(t, Unknown, FromName("explode"))
	assert.Equal(t, "unknown", Unknown.String())
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in     string
		want   Version
		quirks sync.Quirks
	}{
		{in: "1.0", want: V10, quirks: sync.Legacy},
		{in: "10", want: V10, quirks: sync.Legacy},
		{in: "2.0", want: V20, quirks: sync.Current},
		{in: "20", want: V20, quirks: sync.Current},
		{in: "3.0", want: VersionUnknown, quirks: sync.Current},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseVersion(tt.in)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.quirks, v.Quirks())
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		command Command
		version Version
		want    Behavior
	}{
		{name: "legacy sync", command: Sync, version: V10, want: BehaviorSyncLegacy},
		{name: "current sync", command: Sync, version: V20, want: BehaviorSync},
		{name: "folder sync on legacy", command: FolderSync, version: V10, want: BehaviorFolderSync},
		{name: "folder create", command: FolderCreate, version: V20, want: BehaviorFolderCreate},
		{name: "folder delete", command: FolderDelete, version: V20, want: BehaviorFolderDelete},
		{name: "unread", command: GetItemUnread, version: V20, want: BehaviorGetItemUnread},
		{name: "operations", command: ItemOperations, version: V20, want: BehaviorItemOperations},
		{name: "send file", command: SendFile, version: V20, want: BehaviorSendFile},
		{name: "get file", command: GetFile, version: V10, want: BehaviorGetFile},
		{name: "provision", command: Provision, version: V20, want: BehaviorNull},
		{name: "settings", command: Settings, version: V20, want: BehaviorNull},
		{name: "unknown command", command: Unknown, version: V20, want: BehaviorNull},
		{name: "unknown version", command: Sync, version: VersionUnknown, want: BehaviorNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.command, tt.version))
		})
	}
}
