package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "verdict/pkg/domain-errors"
)

// TestParseJurorID_Invariants validates the parsing invariant:
// juror IDs must be valid, non-empty, non-nil UUIDs.
func TestParseJurorID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseJurorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseJurorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseJurorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseJurorID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, JurorID(valid), id)
	})
}

func TestParseCaseID(t *testing.T) {
	t.Run("rejects non-numeric", func(t *testing.T) {
		_, err := ParseCaseID("abc")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		for _, s := range []string{"0", "-1"} {
			_, err := ParseCaseID(s)
			require.Error(t, err, s)
		}
	})

	t.Run("accepts positive integers", func(t *testing.T) {
		id, err := ParseCaseID("42")
		require.NoError(t, err)
		assert.Equal(t, CaseID(42), id)
	})
}
