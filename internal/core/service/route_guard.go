package service

import (
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

// GuardState is the outcome of one navigation attempt.
type GuardState int

const (
	GuardEvaluating GuardState = iota
	GuardAllowed
	GuardDeniedUnauthenticated
	GuardDeniedForbidden
)

func (s GuardState) String() string {
	switch s {
	case GuardAllowed:
		return "allowed"
	case GuardDeniedUnauthenticated:
		return "denied_unauthenticated"
	case GuardDeniedForbidden:
		return "denied_forbidden"
	default:
		return "evaluating"
	}
}

// Decision is what the guard concluded for Path. Redirect is set whenever the
// navigation does not land on Path itself.
type Decision struct {
	State    GuardState `json:"-"`
	Path     string     `json:"path"`
	Redirect string     `json:"redirect,omitempty"`
	ReturnTo string     `json:"return_to,omitempty"`
	Title    string     `json:"title,omitempty"`
}

// Allowed is shorthand for State == GuardAllowed.
func (d Decision) Allowed() bool { return d.State == GuardAllowed }

// RouteGuard decides navigation against the route table and the current
// identity. It remembers the last path an unauthenticated visitor asked for
// so login can resume there.
type RouteGuard struct {
	identities ports.IdentitySource
	log        zerolog.Logger

	mu       sync.Mutex
	returnTo string
}

func NewRouteGuard(identities ports.IdentitySource, log zerolog.Logger) *RouteGuard {
	return &RouteGuard{identities: identities, log: log}
}

// Evaluate runs the guard for path. Forbidden access redirects to the home
// page without an error.
func (g *RouteGuard) Evaluate(path string) Decision {
	if path == "" {
		path = "/"
	}
	requested := path

	route, ok := domain.ResolveRoute(path)
	if !ok {
		// "/" and unknown paths land on the dashboard, which is then guarded.
		route, _ = domain.RouteFor(domain.AreaOf(domain.HomePath))
		path = domain.HomePath
	}

	if route.Public {
		return Decision{State: GuardAllowed, Path: path, Title: route.Title, Redirect: moved(requested, path)}
	}

	identity := g.identities.Current()
	if identity == nil {
		g.remember(path)
		return Decision{
			State:    GuardDeniedUnauthenticated,
			Path:     path,
			Redirect: domain.LoginPath + "?returnUrl=" + url.QueryEscape(path),
			ReturnTo: path,
		}
	}

	if !Satisfies(identity, route.Requirement) {
		g.log.Debug().Str("path", path).Str("role", string(identity.Role)).Msg("forbidden navigation redirected home")
		return Decision{State: GuardDeniedForbidden, Path: path, Redirect: domain.HomePath}
	}

	return Decision{State: GuardAllowed, Path: path, Title: route.Title, Redirect: moved(requested, path)}
}

// moved returns path when the fallback rule rewrote the request.
func moved(requested, path string) string {
	if requested == path {
		return ""
	}
	return path
}

func (g *RouteGuard) remember(path string) {
	g.mu.Lock()
	g.returnTo = path
	g.mu.Unlock()
}

// ResumeTarget picks where to go after a successful login: the requested
// return URL when it is a safe local path, else the remembered one, else
// the home page. The remembered target is consumed.
func (g *RouteGuard) ResumeTarget(requested string) string {
	g.mu.Lock()
	remembered := g.returnTo
	g.returnTo = ""
	g.mu.Unlock()

	for _, candidate := range []string{requested, remembered} {
		if isSafeReturnPath(candidate) {
			return candidate
		}
	}
	return domain.HomePath
}

func isSafeReturnPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return false
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" {
		return false
	}
	return domain.AreaOf(p) != domain.AreaOf(domain.LoginPath)
}
