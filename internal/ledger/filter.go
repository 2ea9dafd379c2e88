package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recon-backend/internal/models"

	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

// DateWindow bounds a listing by date, inclusive on both ends. An empty bound
// is open on that side.
type DateWindow struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Contains reports whether an ISO date falls inside the window.
func (w DateWindow) Contains(date string) bool {
	if w.From != "" && date < w.From {
		return false
	}
	if w.To != "" && date > w.To {
		return false
	}
	return true
}

// ParseDateWindow validates both bounds. A malformed bound is dropped and
// reported in the returned warnings; the window stays usable.
func ParseDateWindow(field, from, to string) (DateWindow, []*ValidationError) {
	var (
		w        DateWindow
		warnings []*ValidationError
	)

	parse := func(name, value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return ""
		}
		if _, err := time.Parse(DateLayout, value); err != nil {
			warnings = append(warnings, &ValidationError{
				Field: field + "_" + name,
				Value: value,
				Err:   ErrInvalidDate,
			})
			return ""
		}
		return value
	}

	w.From = parse("from", from)
	w.To = parse("to", to)
	return w, warnings
}

// LedgerFilter narrows the detail listing of ledger rows. It never affects
// the summary.
type LedgerFilter struct {
	Window      DateWindow
	ProductCode string
}

// DetailFilter lists the rows disclosed in a report section.
type DetailFilter struct {
	db *gorm.DB
}

func NewDetailFilter(db *gorm.DB) *DetailFilter {
	return &DetailFilter{db: db}
}

// ListLedgerEntries returns the partner's sales or purchases inside the filter,
// newest first. Rows sharing a date keep insertion order.
func (f *DetailFilter) ListLedgerEntries(ctx context.Context, partnerCode string, role models.PartnerRole, filter LedgerFilter) ([]Entry, error) {
	const op = "ListLedgerEntries"

	dir, err := directionFor(role)
	if err != nil {
		return nil, &DataAccessError{Op: op, Err: err}
	}

	q := f.db.WithContext(ctx).
		Table(dir.ledgerTable).
		Select(fmt.Sprintf(`id,
			COALESCE(%[1]s, '') AS partner_code,
			COALESCE(product_code, '') AS product_code,
			COALESCE(product_model, '') AS product_model,
			COALESCE(quantity, 0) AS quantity,
			COALESCE(unit_price, 0) AS unit_price,
			COALESCE(total_price, 0) AS total_price,
			COALESCE(%[2]s, '') AS entry_date,
			COALESCE(invoice_number, '') AS invoice_number,
			COALESCE(invoice_image_url, '') AS invoice_image_url,
			COALESCE(order_number, '') AS order_number,
			COALESCE(remark, '') AS remark`, dir.partnerColumn, dir.dateColumn)).
		Where(dir.partnerColumn+" = ?", partnerCode)
	q = applyWindow(q, dir.dateColumn, filter.Window)
	if filter.ProductCode != "" {
		q = q.Where("product_code = ?", filter.ProductCode)
	}

	var entries []Entry
	if err := q.Order(dir.dateColumn + " DESC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, newDataAccessError(op, dir.ledgerTable, err)
	}
	return entries, nil
}

// ListPaymentEntries returns the partner's receipts or payments inside the
// window, newest first.
func (f *DetailFilter) ListPaymentEntries(ctx context.Context, partnerCode string, role models.PartnerRole, window DateWindow) ([]Payment, error) {
	const op = "ListPaymentEntries"

	dir, err := directionFor(role)
	if err != nil {
		return nil, &DataAccessError{Op: op, Err: err}
	}

	q := f.db.WithContext(ctx).
		Table(dir.paymentTable).
		Select(fmt.Sprintf(`id,
			COALESCE(%s, '') AS partner_code,
			COALESCE(amount, 0) AS amount,
			COALESCE(pay_date, '') AS pay_date,
			COALESCE(pay_method, '') AS pay_method,
			COALESCE(remark, '') AS remark`, dir.partnerColumn)).
		Where(dir.partnerColumn+" = ?", partnerCode)
	q = applyWindow(q, "pay_date", window)

	var payments []Payment
	if err := q.Order("pay_date DESC").Order("id ASC").Find(&payments).Error; err != nil {
		return nil, newDataAccessError(op, dir.paymentTable, err)
	}
	return payments, nil
}

func applyWindow(q *gorm.DB, column string, w DateWindow) *gorm.DB {
	if w.From != "" {
		q = q.Where(column+" >= ?", w.From)
	}
	if w.To != "" {
		q = q.Where(column+" <= ?", w.To)
	}
	return q
}
