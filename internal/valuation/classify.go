package valuation

import "github.com/Billy-Davies-2/auction-draft/internal/models"

// Classify labels a price against a pre-bid range. A missing range is Fair.
func Classify(r *models.PreBidRange, price int) models.Classification {
	if r == nil {
		return models.Fair
	}
	p := float64(price)
	switch {
	case p < r.StealBelow:
		return models.BigSteal
	case p < r.ValueBelow:
		return models.Steal
	case p <= r.FairHigh:
		return models.Fair
	case p < r.OverpayAbove:
		return models.Overpay
	default:
		return models.BigOverpay
	}
}
