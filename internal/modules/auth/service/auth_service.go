package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"vecino/internal/modules/auth/domain"
	authout "vecino/internal/modules/auth/port/out"
	apperrors "vecino/internal/platform/errors"
)

type AuthService struct {
	validate *validator.Validate
	checker  authout.IdentifierChecker
}

func NewAuthService(checker authout.IdentifierChecker) *AuthService {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	return &AuthService{validate: v, checker: checker}
}

// Credentials trims the identifier and rejects blank inputs. The secret is
// returned untouched.
func (s *AuthService) Credentials(identifier, secret string) (string, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", "", apperrors.Required("rut")
	}
	// passwords are sent verbatim; only a blank one is rejected
	if strings.TrimSpace(secret) == "" {
		return "", "", apperrors.Required("password")
	}
	return identifier, secret, nil
}

// Profile normalizes and validates a registration profile. The first failing
// field is reported.
func (s *AuthService) Profile(profile domain.RegistrationProfile) (domain.RegistrationProfile, error) {
	profile.RUT = strings.TrimSpace(profile.RUT)
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Phone = strings.TrimSpace(profile.Phone)
	if err := s.validate.Struct(profile); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return domain.RegistrationProfile{}, fieldError(fieldErrs[0])
		}
		return domain.RegistrationProfile{}, err
	}
	if s.checker != nil && !s.checker.Valid(profile.RUT) {
		return domain.RegistrationProfile{}, apperrors.Invalid("rut", "is not a valid RUT")
	}
	return profile, nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return apperrors.Required(fe.Field())
	case "email":
		return apperrors.Invalid(fe.Field(), "is not a valid email address")
	case "digits":
		return apperrors.Invalid(fe.Field(), "must contain digits only")
	case "max":
		return apperrors.Invalid(fe.Field(), "must be at most "+fe.Param()+" characters")
	}
	return apperrors.Invalid(fe.Field(), "failed "+fe.Tag())
}
