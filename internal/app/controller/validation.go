package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/util"
)

const passwordPolicyTag = "password_policy"

// Messages for the account fields, keyed by json name.
var accountMessages = map[string]string{
	"name":        "Name must be between 20 and 60 characters",
	"email":       "Valid email is required",
	"password":    "Password must be 8-16 characters with at least one uppercase letter and one special character",
	"newPassword": "New password must be 8-16 characters with at least one uppercase letter and one special character",
	"address":     "Address is required and must be less than 400 characters",
	"role":        "Role must be one of user, admin, store_owner",
}

var registerOnce sync.Once

// RegisterValidators installs the custom rules on gin's validator. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation(passwordPolicyTag, func(fl validator.FieldLevel) bool {
			return util.ValidPassword(fl.Field().String())
		})
	})
}

// bindJSON binds the body and answers 400 with every failed rule.
// messages overrides the generic text per field and may be nil.
func bindJSON(c *gin.Context, req interface{}, messages map[string]string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apperrors.RespondWithValidationErrors(c, validationMessages(err, messages))
		return false
	}
	return true
}

func validationMessages(err error, overrides map[string]string) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		seen := make(map[string]bool, len(verrs))
		messages := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg := fieldMessage(fe, overrides)
			if !seen[msg] {
				seen[msg] = true
				messages = append(messages, msg)
			}
		}
		return messages
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []string{fmt.Sprintf("%s has an invalid type", typeErr.Field)}
	}
	return []string{"Invalid request body"}
}

func fieldMessage(fe validator.FieldError, overrides map[string]string) string {
	if msg, ok := overrides[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
