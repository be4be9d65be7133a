package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map messages from these codes, so they must stay stable.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthTokenMissing       = "AUTH_TOKEN_MISSING"       // no bearer token
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // bad signature, malformed, expired or revoked
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email or password
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthPasswordIncorrect  = "AUTH_PASSWORD_INCORRECT"  // current password mismatch
	AuthRoleNotAllowed     = "AUTH_ROLE_NOT_ALLOWED"    // admin self-signup

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // role not allowed
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // only the store's owner

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Stores (STORE_) ====================
	StoreNotFound      = "STORE_NOT_FOUND"
	StoreAlreadyExists = "STORE_ALREADY_EXISTS"
	StoreOwnerNotFound = "STORE_OWNER_NOT_FOUND"
	StoreOwnerInvalid  = "STORE_OWNER_INVALID"

	// ==================== Users (USER_) ====================
	UserNotFound = "USER_NOT_FOUND"

	// ==================== Ratings (RATING_) ====================
	RatingInvalid = "RATING_INVALID"

	// ==================== Rate limiting (RATE_) ====================
	RateLimited = "RATE_LIMITED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
