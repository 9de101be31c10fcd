package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tokensmith/internal/session"
)

func TestSession(t *testing.T) {
	t.Run("records changes in order", func(t *testing.T) {
		s := session.New()
		assert.NotEmpty(t, s.ID)

		s.Record("a.json", "write")
		s.Record("b.json", "write")
		s.Record("a.json", "write")

		assert.Len(t, s.Changes, 3)
		assert.Equal(t, []string{"a.json", "b.json"}, s.TouchedFiles())
	})

	t.Run("nil session is inert", func(t *testing.T) {
		var s *session.Session
		s.Record("a.json", "write")
		assert.Nil(t, s.TouchedFiles())
	})
}
