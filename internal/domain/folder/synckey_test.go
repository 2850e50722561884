package folder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncKeys(t *testing.T) {
	folderID := OnConversation("romeo", "juliet")

	tests := []struct {
		name     string
		key      string
		full     bool
		empty    bool
		position string
		hasPos   bool
	}{
		{name: "bootstrap", key: BootstrapKey, full: false, empty: true},
		{name: "empty incremental", key: EmptyKey(folderID, false), full: false, empty: true},
		{name: "empty full", key: EmptyKey(folderID, true), full: true, empty: true},
		{name: "on child", key: KeyOnChild(folderID, "120"), full: true, position: "120", hasPos: true},
		{name: "on add change", key: KeyOnChange(folderID, Added("55")), position: "55", hasPos: true},
		{name: "on delete change", key: KeyOnChange(folderID, Removed("56")), position: "56", hasPos: true},
		{name: "single char marker", key: folderID + ".+", empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.full, IsFullKey(tt.key))
			assert.Equal(t, tt.empty, IsEmptyKey(tt.key))

			pos, ok := Position(tt.key)
			assert.Equal(t, tt.hasPos, ok)
			assert.Equal(t, tt.position, pos)
		})
	}
}

func TestSplitKey_RoundTrip(t *testing.T) {
	folders := []string{
		OnRoot("romeo"),
		OnConversation("romeo", "juliet"),
		OnGroup("romeo", GroupID("romeo", 1)),
		OnData("romeo", "span-1"),
	}
	markers := []Change{Added("1"), Removed("200"), Added(OnConversation("romeo", "x"))}

	for _, f := range folders {
		for _, m := range markers {
			folderID, marker, ok := SplitKey(KeyOnChange(f, m))
			assert.True(t, ok)
			assert.Equal(t, f, folderID)

			parsed, ok := ParseChange(marker)
			assert.True(t, ok)
			assert.Equal(t, m, parsed)
		}

		folderID, marker, ok := SplitKey(KeyOnChild(f, "42"))
		assert.True(t, ok)
		assert.Equal(t, f, folderID)
		assert.Equal(t, "F42", marker)
	}
}

func TestSplitKey_NoSeparator(t *testing.T) {
	_, _, ok := SplitKey(BootstrapKey)
	assert.False(t, ok)

	_, ok = Position(BootstrapKey)
	assert.False(t, ok)
}
