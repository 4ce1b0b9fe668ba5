package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"team_manager", true},
		{"insurance", true},
		{"", false},
		{"admin", false},
		{"Team_Manager", false},
		{"insurance ", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidRole(tt.role))
		})
	}
}

func TestValidUsername(t *testing.T) {
	assert.False(t, ValidUsername(""))
	assert.False(t, ValidUsername("abc"))
	assert.True(t, ValidUsername("abcd"))
	assert.True(t, ValidUsername("alice.o'hara"), "punctuation is not stripped or rejected")
}

func TestValidPassword(t *testing.T) {
	assert.False(t, ValidPassword("123"))
	assert.True(t, ValidPassword("1234"))
	assert.True(t, ValidPassword("secret!"))
	assert.True(t, ValidPassword(strings.Repeat("p", MaxPasswordLength)))
	assert.False(t, ValidPassword(strings.Repeat("p", MaxPasswordLength+1)))
}
