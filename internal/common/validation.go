package common

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/joseph-ayodele/logforms/constants"
)

// MaxIdentifierBytes matches PostgreSQL's NAMEDATALEN-1.
const MaxIdentifierBytes = 63

var identRe = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"-"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		RegisterValidations(v)
		validate = v
	})
	return validate
}

// RegisterValidations installs the domain tags on v:
// ident, fieldkey, fieldtype, storagetype, coldefault.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return IsIdentifier(fl.Field().String())
	})
	_ = v.RegisterValidation("fieldkey", func(fl validator.FieldLevel) bool {
		return IsFieldKey(fl.Field().String())
	})
	_ = v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
		return constants.FieldType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("storagetype", func(fl validator.FieldLevel) bool {
		switch constants.StorageType(fl.Field().String()) {
		case constants.StorageUUID, constants.StorageTimestamp, constants.StorageNumeric,
			constants.StorageDate, constants.StorageBoolean, constants.StorageText, constants.StorageVarchar:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("coldefault", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", constants.DefaultGenerateUUID, constants.DefaultNow:
			return true
		}
		return false
	})
}

// IsIdentifier reports whether s can be used as a table or column name.
func IsIdentifier(s string) bool {
	return s != "" && len(s) <= MaxIdentifierBytes && identRe.MatchString(s)
}

// IsFieldKey reports whether s is a usable field key: an identifier that does
// not collide with the generated columns.
func IsFieldKey(s string) bool {
	if !IsIdentifier(s) {
		return false
	}
	lower := strings.ToLower(s)
	return lower != constants.ColumnID && lower != constants.ColumnCreatedAt
}

// ValidateStruct runs the struct tags of s and returns an InputValidation
// AppError carrying one detail per failing field.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return InputError(CodeInvalidRequest, "request could not be validated", err)
	}
	details := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationError{
			Field:   fieldPath(fe),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return InputError(CodeInvalidRequest, joinDetails(details), err).WithDetails(details)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without", "required_if":
		return "is required"
	case "excluded_with":
		return "must not be combined with " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " item(s) or characters"
	case "max":
		return "must have at most " + fe.Param() + " item(s) or characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "unique":
		return "must not contain duplicate " + strings.ToLower(fe.Param()) + " values"
	case "ident":
		return "must be an identifier of letters, digits and underscores (max 63 bytes)"
	case "fieldkey":
		return "must be an identifier of letters, digits and underscores that is not id or created_at"
	case "fieldtype":
		return "must be one of: " + strings.Join(constants.FieldTypes(), ", ")
	case "storagetype":
		return "is not a supported storage type"
	case "coldefault":
		return "must be empty, " + constants.DefaultGenerateUUID + " or " + constants.DefaultNow
	default:
		return "failed the '" + fe.Tag() + "' rule"
	}
}

func joinDetails(details []ValidationError) string {
	messages := make([]string, 0, len(details))
	for _, d := range details {
		messages = append(messages, d.Field+" "+d.Message)
	}
	return strings.Join(messages, "; ")
}
