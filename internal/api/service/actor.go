package service

import "libraryhub/internal/api/models"

// Actor is the identity/role claim handed down by the authentication layer.
// The services trust it; no credential verification happens here.
type Actor struct {
	UserID    string
	Role      string
	LibraryID int64
}

// IsStaff reports whether the actor holds elevated privileges.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleStaff
}

// canActOn reports whether the actor owns the record or is staff.
func (a Actor) canActOn(ownerID string) bool {
	return a.UserID == ownerID || a.IsStaff()
}
