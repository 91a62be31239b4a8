package manager

import (
	"context"
	"strings"

	"github.com/okhi/okcollect/internal/domain"
)

// Result is a successfully collected address together with the user it
// belongs to.
type Result struct {
	User     domain.User
	Location domain.Location

	verifier VerificationStarter
}

// StartVerification begins verifying the collected address. The verification
// types default to digital when the frame reported none.
func (r Result) StartVerification(ctx context.Context) error {
	if strings.TrimSpace(r.Location.ID) == "" {
		return domain.NewError(domain.CodeBadRequest, "location id is required to start verification")
	}
	if r.verifier == nil {
		return domain.NewError(domain.CodeUnknown, "no verification starter is configured")
	}
	types := r.Location.UsageTypes
	if len(types) == 0 {
		types = []string{"digital"}
	}
	return r.verifier.StartVerification(ctx, r.User, r.Location, types)
}
