// Package commitments handles the caller-supplied vote commitments.
//
// Commitments serve client-side replay bookkeeping and the voluntary
// alignment disclosure after reveal. The core records them and can verify a
// disclosure against them, but never enforces them at cast time.
package commitments

import (
	"bytes"
	"context"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	id "verdict/pkg/domain"
)

// Digest computes the canonical commitment for a ballot:
// Keccak256(caseID_be64 || juror_uuid || choice || salt).
// Clients compute the same digest when committing and later when disclosing
// alignment.
func Digest(caseID id.CaseID, juror id.JurorID, choice uint8, salt []byte) []byte {
	d := sha3.NewLegacyKeccak256()
	var cid [8]byte
	binary.BigEndian.PutUint64(cid[:], uint64(caseID))
	d.Write(cid[:])
	jb := [16]byte(juror)
	d.Write(jb[:])
	d.Write([]byte{choice})
	d.Write(salt)
	return d.Sum(nil)
}

// Matches reports whether a disclosed (choice, salt) pair reproduces the
// stored commitment.
func Matches(commitment []byte, caseID id.CaseID, juror id.JurorID, choice uint8, salt []byte) bool {
	return len(commitment) > 0 && bytes.Equal(commitment, Digest(caseID, juror, choice, salt))
}

// Recorder tracks first use of a commitment per case.
type Recorder interface {
	// Record stores the commitment and reports whether this is its first
	// use for the case.
	Record(ctx context.Context, caseID id.CaseID, commitment []byte) (first bool, err error)
}
