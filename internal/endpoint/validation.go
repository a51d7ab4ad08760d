package endpoint

import (
	"fmt"

	"github.com/example/coursewizard/internal/domain"
)

// validateAdvanceRequest checks the shape of a submission. Step range and
// action are wizard state rules and are left to the service.
func validateAdvanceRequest(req *AdvanceRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", domain.ErrInvalidArgument)
	}
	if req.Scope <= 0 {
		return fmt.Errorf("%w: scope is required", domain.ErrInvalidArgument)
	}
	if req.DraftID < 0 {
		return fmt.Errorf("%w: draftId must not be negative", domain.ErrInvalidArgument)
	}
	if req.Version < 0 {
		return fmt.Errorf("%w: version must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}

func validatePrivacyRequest(req *PrivacyRequest) error {
	if req == nil || req.Owner <= 0 {
		return fmt.Errorf("%w: owner is required", domain.ErrInvalidArgument)
	}
	if req.Scope < 0 {
		return fmt.Errorf("%w: scope must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}
