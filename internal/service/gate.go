package service

import "bitwise74/user-api/internal/apperr"

// Authorize permits a mutation only when the caller targets their own
// record
func Authorize(identity, target uint) error {
	if identity == 0 || identity != target {
		return apperr.New(apperr.ErrForbidden, "You can only modify your own profile")
	}

	return nil
}
