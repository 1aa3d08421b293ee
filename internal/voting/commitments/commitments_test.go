package commitments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verdict/pkg/domain"
)

func TestDigest(t *testing.T) {
	caseID := id.CaseID(7)
	juror := id.JurorID(uuid.New())
	salt := []byte("salt")

	d := Digest(caseID, juror, 1, salt)
	assert.Len(t, d, 32)
	assert.Equal(t, d, Digest(caseID, juror, 1, salt), "digest must be deterministic")

	assert.NotEqual(t, d, Digest(id.CaseID(8), juror, 1, salt))
	assert.NotEqual(t, d, Digest(caseID, id.JurorID(uuid.New()), 1, salt))
	assert.NotEqual(t, d, Digest(caseID, juror, 0, salt))
	assert.NotEqual(t, d, Digest(caseID, juror, 1, []byte("other")))
}

func TestMatches(t *testing.T) {
	caseID := id.CaseID(7)
	juror := id.JurorID(uuid.New())
	salt := []byte("salt")
	commitment := Digest(caseID, juror, 1, salt)

	assert.True(t, Matches(commitment, caseID, juror, 1, salt))
	assert.False(t, Matches(commitment, caseID, juror, 0, salt))
	assert.False(t, Matches(commitment, caseID, juror, 1, []byte("other")))
	assert.False(t, Matches(nil, caseID, juror, 1, salt), "empty commitment never matches")
}

func TestMemoryRecorder(t *testing.T) {
	ctx := context.Background()
	rec := NewMemory()
	commitment := []byte("commitment")

	first, err := rec.Record(ctx, id.CaseID(1), commitment)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = rec.Record(ctx, id.CaseID(1), commitment)
	require.NoError(t, err)
	assert.False(t, first, "repeat within a case is not first use")

	first, err = rec.Record(ctx, id.CaseID(2), commitment)
	require.NoError(t, err)
	assert.True(t, first, "bookkeeping is per case")
}
