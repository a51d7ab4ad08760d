package service

import (
	"context"
	"fmt"
	"log"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/storage"
)

// ExportUserData lists the drafts of owner, limited to one scope when scope
// is non-zero. Users may export their own data; exporting someone else's
// requires the manage capability.
func (s *WizardService) ExportUserData(ctx context.Context, caller auth.Identity, owner, scope int64) ([]*domain.Draft, error) {
	if err := s.checkPrivacyAccess(ctx, caller, owner, scope); err != nil {
		return nil, err
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	drafts, err := uow.Drafts().List(ctx, storage.ListOptions{Owner: owner, Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// DeleteUserData erases the drafts of owner, limited to one scope when scope
// is non-zero. It returns the number of drafts removed.
func (s *WizardService) DeleteUserData(ctx context.Context, caller auth.Identity, owner, scope int64) (int64, error) {
	if err := s.checkPrivacyAccess(ctx, caller, owner, scope); err != nil {
		return 0, err
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	n, err := uow.Drafts().DeleteByOwner(ctx, owner, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to delete drafts of user %d: %w", owner, err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	log.Printf("wizard: erased %d drafts of user %d (scope %d)", n, owner, scope)
	return n, nil
}

// DeleteScope erases every draft in a scope, for example when a course is
// deleted. Requires the manage capability.
func (s *WizardService) DeleteScope(ctx context.Context, caller auth.Identity, scope int64) (int64, error) {
	if caller.UserID == 0 {
		return 0, domain.ErrUnauthenticated
	}
	if scope <= 0 {
		return 0, fmt.Errorf("%w: scope must be positive", domain.ErrInvalidArgument)
	}
	if !s.authz.HasCapability(ctx, caller, auth.CapabilityManage, scope) {
		return 0, fmt.Errorf("%w: user %d cannot manage scope %d", domain.ErrPermissionDenied, caller.UserID, scope)
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	n, err := uow.Drafts().DeleteByScope(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to delete drafts in scope %d: %w", scope, err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	log.Printf("wizard: erased %d drafts in scope %d", n, scope)
	return n, nil
}

func (s *WizardService) checkPrivacyAccess(ctx context.Context, caller auth.Identity, owner, scope int64) error {
	if caller.UserID == 0 {
		return domain.ErrUnauthenticated
	}
	if owner <= 0 {
		return fmt.Errorf("%w: owner must be positive", domain.ErrInvalidArgument)
	}
	if caller.UserID != owner && !s.authz.HasCapability(ctx, caller, auth.CapabilityManage, scope) {
		return fmt.Errorf("%w: user %d cannot access data of user %d", domain.ErrPermissionDenied, caller.UserID, owner)
	}
	return nil
}
