package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromCode(t *testing.T) {
	tests := []struct {
		code     byte
		expected Type
		name     string
	}{
		{code: 0x01, expected: TypeText, name: "text"},
		{code: 0x05, expected: TypeFile, name: "file"},
		{code: 0x07, expected: TypeOperation, name: "operation"},
		{code: 0x10, expected: TypeHTML, name: "html"},
		{code: 0x12, expected: TypeSubfolder, name: "subfolder"},
		{code: 0x06, expected: TypeUnknown, name: "unknown"},
		{code: 0xFF, expected: TypeUnknown, name: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := TypeFromCode(tt.code)

			assert.Equal(t, tt.expected, typ)
			assert.Equal(t, tt.name, typ.String())
		})
	}
}

func TestType_Validate(t *testing.T) {
	assert.NoError(t, TypeText.Validate())
	assert.NoError(t, TypeUnknown.Validate())
	assert.Error(t, Type(0x06).Validate())
}

func TestMeta_Size(t *testing.T) {
	small := &Meta{ID: "c-1", Type: TypeText, Content: []byte("hi")}
	large := &Meta{ID: "c-2", Type: TypeText, Content: make([]byte, 2048)}

	data, err := json.Marshal(small)
	require.NoError(t, err)

	assert.Equal(t, len(data), small.Size())
	assert.Greater(t, large.Size(), 2048)
}

func TestRefine(t *testing.T) {
	tests := []struct {
		name     string
		meta     *Meta
		expected []byte
	}{
		{name: "text keeps content", meta: &Meta{Type: TypeText, Content: []byte("hi")}, expected: []byte("hi")},
		{name: "mixed keeps content", meta: &Meta{Type: TypeMixed, Content: []byte("<b>")}, expected: []byte("<b>")},
		{name: "audio replaced", meta: &Meta{Type: TypeAudio, Content: []byte{1, 2, 3}}, expected: []byte("audio")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.meta.ID = "1"
			tt.meta.From = "romeo"
			tt.meta.To = "juliet"

			refined := Refine(tt.meta)

			assert.Equal(t, tt.expected, refined.Content)
			assert.Equal(t, "romeo", refined.From)
			assert.Empty(t, refined.To)
		})
	}

	assert.Nil(t, Refine(nil))
}

func TestIndicator(t *testing.T) {
	meta := &Meta{ID: "client-1", From: "a", To: "b", Type: TypeAudio, Time: 100, SpanID: "s", SpanLimit: 3, Content: []byte("x")}

	ind := Indicator(meta, "a-conv-b-42")

	assert.Equal(t, "client-1", ind.ID)
	assert.Equal(t, []byte("a-conv-b-42"), ind.Content)
	assert.Equal(t, int64(100), ind.Time)
	assert.Equal(t, "s", ind.SpanID)
	assert.Equal(t, 3, ind.SpanLimit)
	assert.Empty(t, ind.From)
}
