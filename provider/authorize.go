package provider

import "context"

// Authorize is the ownership predicate applied before any account-scoped
// operation: the acting principal must be the account named in the path.
func Authorize(principalID, accountID int64) error {
	if principalID != accountID {
		return ErrForbidden.New("user %d is not authorized to access account %d", principalID, accountID)
	}
	return nil
}

// AuthorizeObjectRead evaluates the two-stage read rule: ownership first,
// and on ownership failure the share grant. Only when both fail is access
// denied.
func (s *SharingService) AuthorizeObjectRead(ctx context.Context, principalID, ownerID int64, filename string) error {
	if err := Authorize(principalID, ownerID); err == nil {
		return nil
	}

	shared, err := s.IsFileSharedWithUser(ctx, ownerID, principalID, filename)
	if err != nil {
		return err
	}
	if !shared {
		return ErrForbidden.New("user %d has no grant for %q from account %d", principalID, filename, ownerID)
	}
	return nil
}
