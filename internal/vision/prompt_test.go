package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Motorola Moto G32", "G32"},
		{"Samsung Galaxy A03 Core Original Con Marco", "Galaxy A03 Core"},
		{"iPhone 13 Pro Max", "13 Pro Max"},
		{"Apple iPhone 11", "11"},
		{"Xiaomi Redmi Note 10 OLED", "Note 10"},
		{"  A52 incell  ", "A52"},
		{"Samsung", ""},
		{"Motorola One Hyper", "One Hyper"},
		{"G8 Power", "G8 Power"},
		{"Pantalla Samsung A10", "Pantalla Samsung A10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanQuery(tt.in), tt.in)
	}
}

func TestPrompt_ListsKnownModels(t *testing.T) {
	p := Prompt([]string{"A52", "Moto G32"})
	assert.Contains(t, p, "A52, Moto G32")
	assert.Contains(t, p, UnknownReply)
}
