package sqlstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		numbered bool
		in       string
		want     string
	}{
		{"question marks kept", false, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = ? AND b = ?"},
		{"numbered", true, "UPDATE t SET a = ?, b = ? WHERE id = ?", "UPDATE t SET a = $1, b = $2 WHERE id = $3"},
		{"no placeholders", true, "SELECT id FROM users", "SELECT id FROM users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, Dialect{Numbered: tt.numbered}, Options{})
			assert.Equal(t, tt.want, s.rebind(tt.in))
		})
	}
}

func TestNew_DefaultsUniqueViolation(t *testing.T) {
	s := New(nil, Dialect{Name: "test"}, Options{})
	assert.False(t, s.dialect.IsUniqueViolation(errors.New("boom")))
	assert.Equal(t, "test", s.Dialect())
}
