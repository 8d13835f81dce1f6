package ports

import (
	"context"

	"github.com/agrocean/console/internal/core/domain"
)

// AuthResult is the backend's answer to login and refresh. User is nil when
// the backend did not send one.
type AuthResult struct {
	Token     string
	User      *domain.Identity
	ExpiresIn int64
}

// AuthAPI is the backend's /auth surface. The current bearer token is
// attached by the transport, not passed in.
type AuthAPI interface {
	CSRFCookie(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*AuthResult, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error)
	ChangePassword(ctx context.Context, change domain.PasswordChange) error
}

// AlertsAPI reports the unread alert badge count.
type AlertsAPI interface {
	UnreadAlertCount(ctx context.Context) (int, error)
}

// DashboardAPI feeds the dashboard aggregate.
type DashboardAPI interface {
	AlertsAPI
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	PendingSupplyRequestCount(ctx context.Context) (int, error)
}
