package message

import (
	"fmt"
	"maps"
	"slices"

	"github.com/danielgtaylor/huma/v2"
)

// Type тип сообщения, передается одним байтом
type Type byte

const (
	TypeUnknown   Type = 0x00
	TypeText      Type = 0x01
	TypeAudio     Type = 0x02
	TypeVideo     Type = 0x03
	TypeImage     Type = 0x04
	TypeFile      Type = 0x05
	TypeOperation Type = 0x07
	TypeLocation  Type = 0x08
	TypeProperty  Type = 0x09
	TypeHTML      Type = 0x10
	TypeMixed     Type = 0x11
	TypeSubfolder Type = 0x12
)

var typeNames = map[Type]string{
	TypeText:      "text",
	TypeAudio:     "audio",
	TypeVideo:     "video",
	TypeImage:     "image",
	TypeFile:      "file",
	TypeOperation: "operation",
	TypeLocation:  "location",
	TypeProperty:  "property",
	TypeHTML:      "html",
	TypeMixed:     "mixed",
	TypeSubfolder: "subfolder",
}

// TypeFromCode возвращает тип по коду, TypeUnknown для неизвестных кодов
func TypeFromCode(code byte) Type {
	t := Type(code)
	if _, ok := typeNames[t]; ok {
		return t
	}
	return TypeUnknown
}

// Code байтовый код типа
func (t Type) Code() byte {
	return byte(t)
}

// String возвращает строковое представление типа.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

func (Type) Schema(_ huma.Registry) *huma.Schema {
	codes := []any{int(TypeUnknown)}
	for _, t := range slices.Sorted(maps.Keys(typeNames)) {
		codes = append(codes, int(t))
	}
	return &huma.Schema{
		Type:        huma.TypeInteger,
		Enum:        codes,
		Description: "Код типа сообщения",
		Examples:    []any{int(TypeText)},
	}
}

// Validate реализует интерфейс huma.Validatable.
func (t Type) Validate() error {
	if t == TypeUnknown || TypeFromCode(byte(t)) != TypeUnknown {
		return nil
	}
	return fmt.Errorf("неверный тип сообщения: %d", byte(t))
}
