package handlers

const (
	ParentCookieName = "alfabeta_parent"
	CSRFHeaderName   = "X-CSRF-Token"

	maxBodyBytes = 1 << 16

	ErrInvalidRequest      = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrTooManyRequests     = "Too many attempts, try again later"
	ErrInternalServerError = "Internal server error"
)
