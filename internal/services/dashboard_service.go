package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
)

// DashboardService aggregates admin overview statistics.
type DashboardService struct {
	DB       *gorm.DB
	Provider CheckoutProvider
}

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	InquiriesByStatus map[domain.Status]int64 `json:"inquiries_by_status"`
	TotalInquiries    int64                   `json:"total_inquiries"`
	PaidConsultations int                     `json:"paid_consultations"`
	RevenueCents      int64                   `json:"revenue_cents"`
}

// Stats computes the dashboard overview. Revenue is reconstructed from the
// provider's per-session totals, fetched concurrently; a session the
// provider cannot report falls back to the locally stored amount, so a
// flaky provider degrades accuracy rather than failing the dashboard.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	byStatus, err := repo.CountInquiriesByStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}

	paid, err := repo.ListPaidInquiries(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		revenue int64
		wg      sync.WaitGroup
	)
	for i := range paid {
		inq := paid[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			amount := inq.AmountDue
			if s.Provider != nil && inq.CheckoutSessionID != "" {
				if sess, err := s.Provider.GetCheckoutSession(ctx, inq.CheckoutSessionID); err == nil && sess.AmountTotal > 0 {
					amount = sess.AmountTotal
				} else if err != nil {
					log.Debug().Err(err).Str("session_id", inq.CheckoutSessionID).Msg("revenue lookup fell back to stored amount")
				}
			}
			mu.Lock()
			revenue += amount
			mu.Unlock()
		}()
	}
	wg.Wait()

	return &DashboardStats{
		InquiriesByStatus: byStatus,
		TotalInquiries:    total,
		PaidConsultations: len(paid),
		RevenueCents:      revenue,
	}, nil
}
