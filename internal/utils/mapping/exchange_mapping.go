package mapping

import (
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/moneta-app/moneta-backend/internal/models"
)

// ToModelExchange converts a domain Exchange to a model Exchange
func ToModelExchange(d domain.Exchange) models.Exchange {
	return models.Exchange{
		ExchangeID:    d.ExchangeID,
		BuyAccountID:  d.BuyAccountID,
		SellAccountID: d.SellAccountID,
		BuyAmount:     d.BuyAmount,
		SellAmount:    d.SellAmount,
		Rate:          d.Rate,
		Agent:         d.Agent,
		HappenedAt:    d.HappenedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToModelPostponedExchange converts a domain PostponedExchange to its model
func ToModelPostponedExchange(d domain.PostponedExchange) models.PostponedExchange {
	return models.PostponedExchange{
		PostponedID:   d.PostponedID,
		BuyAccountID:  d.BuyAccountID,
		SellAccountID: d.SellAccountID,
		BuyAmount:     d.BuyAmount,
		CustomRate:    d.CustomRate,
		Agent:         d.Agent,
		HappenedAt:    d.HappenedAt,
		Day:           d.Day.Time(),
		Relevant:      d.Relevant,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPostponedExchange converts a model PostponedExchange to its domain form
func ToDomainPostponedExchange(m models.PostponedExchange) domain.PostponedExchange {
	return domain.PostponedExchange{
		PostponedID:   m.PostponedID,
		BuyAccountID:  m.BuyAccountID,
		SellAccountID: m.SellAccountID,
		BuyAmount:     m.BuyAmount,
		CustomRate:    m.CustomRate,
		Agent:         m.Agent,
		HappenedAt:    m.HappenedAt,
		Day:           domain.DayOf(m.Day),
		Relevant:      m.Relevant,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPostponedExchangeSlice converts a slice of model PostponedExchanges
func ToDomainPostponedExchangeSlice(ms []models.PostponedExchange) []domain.PostponedExchange {
	ds := make([]domain.PostponedExchange, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPostponedExchange(m)
	}
	return ds
}
