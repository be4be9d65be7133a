package errors

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// ErrorInfo pairs a stable code with a client-safe message.
type ErrorInfo struct {
	Code    string // see codes.go
	Message string
}

// IsDuplicateKey reports whether err is a unique constraint violation from any
// supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}

	// postgres: duplicate key value violates unique constraint (23505)
	// sqlite: UNIQUE constraint failed
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "duplicate entry") ||
		strings.Contains(errLower, "unique constraint")
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ParseError maps a persistence error to a code and message that are safe to
// return. Driver details never leave this function; callers log err themselves.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	if IsNotFound(err) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: notFoundMessage(context),
		}
	}

	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(err.Error())
	}

	errLower := strings.ToLower(err.Error())
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "rating") {
			return ErrorInfo{Code: RatingInvalid, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "store") {
			return ErrorInfo{Code: StoreNotFound, Message: "Store not found"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record not found"}
	}

	return ErrorInfo{
		Code:    InternalDatabaseError,
		Message: "Database error",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "stores") {
		return ErrorInfo{Code: StoreAlreadyExists, Message: "Store already exists"}
	}
	if strings.Contains(errLower, "users") || strings.Contains(errLower, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "User already exists"}
	}

	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return StoreNotFound
	case strings.Contains(contextLower, "user"):
		return UserNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return "Store not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "rating"):
		return "Rating not found"
	}
	return "Resource not found"
}
