// Package authz centralizes the role predicates used by mutating
// operations. Every service invokes these at the top of an operation instead
// of branching on roles ad hoc.
package authz

import (
	"context"

	"verdict/internal/caseledger/models"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

// RequireOwner verifies the caller authenticated with the process-owner
// role.
func RequireOwner(ctx context.Context) error {
	if !requestcontext.IsOwner(ctx) {
		return dErrors.New(dErrors.CodeForbidden, "operation requires the process owner")
	}
	return nil
}

// RequireJudge verifies the caller is the judge assigned to the case.
func RequireJudge(c *models.LegalCase, caller id.JurorID) error {
	if c.Judge != caller {
		return dErrors.New(dErrors.CodeNotCaseJudge, "caller is not the case judge")
	}
	return nil
}

// RequireCaller verifies an authenticated principal is present at all.
func RequireCaller(ctx context.Context) (id.JurorID, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return id.JurorID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return caller, nil
}
