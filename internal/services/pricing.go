package services

import "github.com/atelierhaus/atelier-backend/internal/domain"

// Consultation pricing is a fixed lookup. There is deliberately no dynamic
// pricing logic anywhere in the system; changing a price means changing this
// table.
var consultationPrices = map[domain.ConsultationDuration]int64{
	domain.Duration30: 15000, // cents
	domain.Duration60: 25000,
	domain.Duration90: 35000,
}

// roadmapAddOnCents is the flat price of the roadmap report add-on.
const roadmapAddOnCents int64 = 9900

// consultationCurrency is the billing currency for all consultations.
const consultationCurrency = "eur"

// ConsultationPrice returns the total checkout amount in cents for the given
// duration and add-on choice.
func ConsultationPrice(d domain.ConsultationDuration, roadmapReport bool) (int64, error) {
	base, ok := consultationPrices[d]
	if !ok {
		return 0, ErrInvalidDuration
	}
	if roadmapReport {
		return base + roadmapAddOnCents, nil
	}
	return base, nil
}
