package ledger

import (
	"context"

	"recon-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregator computes full-history totals for a partner. It takes
// no date or product bounds.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Summarize sums the partner's ledger totals and payments. Missing rows count
// as zero and Balance is Total - Paid, negative when overpaid.
func (a *Aggregator) Summarize(ctx context.Context, partnerCode string, role models.PartnerRole) (Summary, error) {
	const op = "Summarize"

	dir, err := directionFor(role)
	if err != nil {
		return Summary{}, &DataAccessError{Op: op, Err: err}
	}

	total, err := a.sum(ctx, dir.ledgerTable, dir.partnerColumn, "total_price", partnerCode)
	if err != nil {
		return Summary{}, newDataAccessError(op, dir.ledgerTable, err)
	}

	paid, err := a.sum(ctx, dir.paymentTable, dir.partnerColumn, "amount", partnerCode)
	if err != nil {
		return Summary{}, newDataAccessError(op, dir.paymentTable, err)
	}

	return NewSummary(total, paid), nil
}

func (a *Aggregator) sum(ctx context.Context, table, partnerColumn, valueColumn, partnerCode string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := a.db.WithContext(ctx).
		Table(table).
		Where(partnerColumn+" = ?", partnerCode).
		Select("COALESCE(SUM(" + valueColumn + "), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
