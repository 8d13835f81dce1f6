package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

// DashboardService assembles the home page from several backend reports,
// fetched concurrently. Counters are only requested for identities allowed
// to see them.
type DashboardService struct {
	api ports.DashboardAPI
	log zerolog.Logger
}

func NewDashboardService(api ports.DashboardAPI, log zerolog.Logger) *DashboardService {
	return &DashboardService{api: api, log: log}
}

func (s *DashboardService) Load(ctx context.Context, identity *domain.Identity) (*domain.Dashboard, error) {
	if identity == nil {
		return nil, domain.ErrNotAuthenticated
	}

	var (
		out     domain.Dashboard
		alerts  int
		pending int
	)
	withAlerts := CanViewAlerts(identity)
	withPending := CanViewSupplyRequests(identity)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		stats, err := s.api.DashboardStats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		out.Stats = stats
		return nil
	})
	if withAlerts {
		eg.Go(func() error {
			n, err := s.api.UnreadAlertCount(ctx)
			if err != nil {
				return fmt.Errorf("unread alerts: %w", err)
			}
			alerts = n
			return nil
		})
	}
	if withPending {
		eg.Go(func() error {
			n, err := s.api.PendingSupplyRequestCount(ctx)
			if err != nil {
				return fmt.Errorf("pending supply requests: %w", err)
			}
			pending = n
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	if withAlerts {
		out.UnreadAlerts = &alerts
	}
	if withPending {
		out.PendingSupplyRequests = &pending
	}
	s.log.Debug().Str("role", string(identity.Role)).Msg("dashboard loaded")
	return &out, nil
}
