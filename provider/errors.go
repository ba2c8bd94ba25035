package provider

import "github.com/zeebo/errs"

// Error classes for the service layer. The HTTP layer maps these onto
// status codes; everything outside the classes is a backend fault.
var (
	ErrNotFound        = errs.Class("not found")
	ErrDuplicate       = errs.Class("duplicate")
	ErrForbidden       = errs.Class("forbidden")
	ErrInvalidArgument = errs.Class("invalid argument")
	ErrBackend         = errs.Class("backend fault")
)
