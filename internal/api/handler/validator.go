package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agrocean/console/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors are the json names the UI sends.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Failures come back as a
// *domain.ValidationError keyed by field.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := fieldName(fe)
		fields[name] = append(fields[name], fieldError(fe))
	}
	return &domain.ValidationError{Message: "Formulaire invalide", Fields: fields}
}

// fieldName drops the top-level struct name from the namespace:
// "loginRequest.email" -> "email", "quoteRequest.lignes[0].quantite" stays nested.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// fieldError converts a single ValidationError into a message for the form.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est requis"
	case "email":
		return "Adresse email invalide"
	case "gt":
		return fmt.Sprintf("Doit être supérieur à %s", fe.Param())
	case "min":
		return fmt.Sprintf("Au moins %s caractères", fe.Param())
	case "max":
		return fmt.Sprintf("Au plus %s caractères", fe.Param())
	case "eqfield":
		return "Les mots de passe ne correspondent pas"
	case "oneof":
		return fmt.Sprintf("Valeurs possibles : %s", fe.Param())
	default:
		return fmt.Sprintf("Valeur invalide (%s)", fe.Tag())
	}
}
