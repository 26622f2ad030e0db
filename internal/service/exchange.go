package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// RetrieveExchangeRate returns the exchange rate of a transaction currency.
// A currency without a rate reports zero.
func (s *Service) RetrieveExchangeRate(ctx context.Context, currencyID uuid.UUID) (ir.Decimal, error) {
	if currencyID == uuid.Nil {
		return ir.Decimal{}, fault.New(fault.CodeInvalidArgument,
			"Can not retrieve Exchange Rate without Transaction Currency Guid")
	}

	q := query.NewExpression("transactioncurrency")
	q.Columns = query.Columns("exchangerate")
	q.Criteria.AddCondition("transactioncurrencyid", query.Equal, ir.NewGUID(currencyID))

	res, err := s.RetrieveMultiple(ctx, q)
	if err != nil {
		return ir.Decimal{}, err
	}
	if len(res.Records) == 0 {
		return ir.Decimal{}, fault.New(fault.CodeEntityNotFound, "Transaction Currency not found").
			With("entity", "transactioncurrency").With("id", currencyID.String())
	}

	switch rate := ir.Unwrap(res.Records[0].Get("exchangerate")).(type) {
	case ir.Decimal:
		return rate, nil
	case ir.Int:
		return ir.DecimalFromInt(int64(rate)), nil
	default:
		return ir.DecimalFromInt(0), nil
	}
}
