package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNetwork            = errors.New("backend unreachable")
	ErrSessionExpired     = errors.New("session expired")
	ErrValidation         = errors.New("validation failed")
	ErrServer             = errors.New("backend error")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("access forbidden")
	// ErrSessionChanged means the session a request started under was
	// replaced or ended before its result could be stored.
	ErrSessionChanged     = errors.New("session changed")
)

// ValidationError is a form-level failure. Fields maps a field name to its
// messages, mirroring the backend's 422 "errors" object.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return ErrValidation.Error()
		}
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.Join(e.Fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// BackendError carries the HTTP status and message of a failed backend call.
// Kind is one of the sentinels above and is what errors.Is matches against.
type BackendError struct {
	Kind    error
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	switch {
	case e.Message != "" && e.Status > 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	default:
		return e.Kind.Error()
	}
}

func (e *BackendError) Unwrap() error { return e.Kind }

// UserMessage returns the text safe to show the operator.
func UserMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" &&
		(errors.Is(be.Kind, ErrInvalidCredentials) || errors.Is(be.Kind, ErrForbidden) || errors.Is(be.Kind, ErrNotFound)) {
		return be.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Email ou mot de passe incorrect. Veuillez réessayer."
	case errors.Is(err, ErrSessionExpired):
		return "Session expirée, veuillez vous reconnecter"
	case errors.Is(err, ErrNetwork):
		return "Impossible de joindre le serveur"
	case errors.Is(err, ErrNotFound):
		return "Ressource introuvable"
	case errors.Is(err, ErrForbidden):
		return "Accès refusé"
	case errors.Is(err, ErrNotAuthenticated):
		return "Authentification requise"
	case errors.Is(err, ErrSessionChanged):
		return "La session a changé, veuillez réessayer"
	default:
		return "Une erreur est survenue"
	}
}
