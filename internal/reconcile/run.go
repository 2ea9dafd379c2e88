// Package reconcile drives one receivable/payable reconciliation run: list
// partners, summarize them, pull their detail rows, assemble sections and hand
// the whole set to the workbook writer once.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"recon-backend/internal/config"
	"recon-backend/internal/ledger"
	"recon-backend/internal/logger"
	"recon-backend/internal/models"
	"recon-backend/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Source is the read side a run needs. *ledger.Store satisfies it.
type Source interface {
	ListPartners(ctx context.Context, role models.PartnerRole) ([]models.Partner, error)
	Summarize(ctx context.Context, partnerCode string, role models.PartnerRole) (ledger.Summary, error)
	ListLedgerEntries(ctx context.Context, partnerCode string, role models.PartnerRole, filter ledger.LedgerFilter) ([]ledger.Entry, error)
	ListPaymentEntries(ctx context.Context, partnerCode string, role models.PartnerRole, window ledger.DateWindow) ([]ledger.Payment, error)
}

// Exporter persists assembled sections. *workbook.Writer satisfies it.
type Exporter interface {
	Write(out io.Writer, sections []report.Section) error
	SaveFile(path string, sections []report.Section) error
}

// Filters are the per-run inputs. Date bounds are raw strings; malformed ones
// are dropped with a warning.
type Filters struct {
	OutboundFrom string
	OutboundTo   string
	PaymentFrom  string
	PaymentTo    string
	ProductCode  string
	Output       string
	Disambiguate bool
}

// AppliedFilters echoes the bounds that were actually used.
type AppliedFilters struct {
	OutboundFrom string `json:"outbound_from"`
	OutboundTo   string `json:"outbound_to"`
	PaymentFrom  string `json:"payment_from"`
	PaymentTo    string `json:"payment_to"`
	ProductCode  string `json:"product_code"`
}

// Result is the outcome of a run. Failures are reported here, never as a Go
// error.
type Result struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	RunID          string         `json:"run_id"`
	FilePath       string         `json:"file_path,omitempty"`
	TotalCustomers int            `json:"total_customers"`
	TotalSuppliers int            `json:"total_suppliers"`
	TotalSheets    int            `json:"total_sheets"`
	Filters        AppliedFilters `json:"filters"`
	Warnings       []string       `json:"warnings,omitempty"`
}

const filePrefix = "receivable-payable-export"

// DefaultFileName is the name used when no output is given.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", filePrefix, now.Format("20060102_150405"))
}

type Run struct {
	source   Source
	exporter Exporter
	opts     config.RunOptions
	now      func() time.Time
}

func NewRun(source Source, exporter Exporter, opts config.RunOptions) *Run {
	return &Run{source: source, exporter: exporter, opts: opts, now: time.Now}
}

// OutputPath resolves where a run writes its workbook. Relative names land
// under the export directory; absolute paths are used as given.
func (r *Run) OutputPath(name string) string {
	if name == "" {
		name = DefaultFileName(r.now())
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.opts.ExportDir, name)
}

// Execute runs the reconciliation and saves the workbook to disk.
func (r *Run) Execute(ctx context.Context, f Filters) Result {
	path := r.OutputPath(f.Output)
	return r.run(ctx, f, func(sections []report.Section) error {
		return r.exporter.SaveFile(path, sections)
	}, path)
}

// ExecuteTo runs the reconciliation and streams the workbook to out. Nothing
// is written to out unless every section was assembled.
func (r *Run) ExecuteTo(ctx context.Context, f Filters, out io.Writer) Result {
	return r.run(ctx, f, func(sections []report.Section) error {
		return r.exporter.Write(out, sections)
	}, "")
}

func (r *Run) run(ctx context.Context, f Filters, export func([]report.Section) error, path string) Result {
	res := Result{RunID: uuid.NewString()}
	log := logger.WithRunID("reconcile", res.RunID)
	started := r.now()

	outbound, warnings := ledger.ParseDateWindow("outbound", f.OutboundFrom, f.OutboundTo)
	payment, more := ledger.ParseDateWindow("payment", f.PaymentFrom, f.PaymentTo)
	for _, w := range append(warnings, more...) {
		log.Warn().Str("field", w.Field).Str("value", w.Value).Msg("invalid date bound ignored")
		res.Warnings = append(res.Warnings, w.Error())
	}
	res.Filters = AppliedFilters{
		OutboundFrom: outbound.From,
		OutboundTo:   outbound.To,
		PaymentFrom:  payment.From,
		PaymentTo:    payment.To,
		ProductCode:  f.ProductCode,
	}
	ledgerFilter := ledger.LedgerFilter{Window: outbound, ProductCode: f.ProductCode}

	log.Info().
		Str("outbound_from", outbound.From).Str("outbound_to", outbound.To).
		Str("payment_from", payment.From).Str("payment_to", payment.To).
		Str("product_code", f.ProductCode).
		Msg("reconciliation started")

	var sections []report.Section
	for _, role := range []models.PartnerRole{models.PartnerCustomer, models.PartnerSupplier} {
		built, err := r.collect(ctx, log, role, ledgerFilter, payment)
		if err != nil {
			return r.fail(log, res, err)
		}
		switch role {
		case models.PartnerCustomer:
			res.TotalCustomers = len(built)
		case models.PartnerSupplier:
			res.TotalSuppliers = len(built)
		}
		sections = append(sections, built...)
	}

	if f.Disambiguate {
		sections = report.Disambiguate(sections)
	}
	if err := export(sections); err != nil {
		return r.fail(log, res, err)
	}

	res.Success = true
	res.FilePath = path
	res.TotalSheets = len(sections)
	res.Message = fmt.Sprintf("exported %d customers and %d suppliers", res.TotalCustomers, res.TotalSuppliers)
	log.Info().
		Int("customers", res.TotalCustomers).
		Int("suppliers", res.TotalSuppliers).
		Str("file", path).
		Dur("took", r.now().Sub(started)).
		Msg("reconciliation finished")
	return res
}

func (r *Run) collect(ctx context.Context, log zerolog.Logger, role models.PartnerRole, lf ledger.LedgerFilter, pw ledger.DateWindow) ([]report.Section, error) {
	partners, err := r.source.ListPartners(ctx, role)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("role", role).Int("partners", len(partners)).Msg("partners loaded")

	sections := make([]report.Section, 0, len(partners))
	for _, p := range partners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary, err := r.source.Summarize(ctx, p.Code, role)
		if err != nil {
			return nil, err
		}
		entries, err := r.source.ListLedgerEntries(ctx, p.Code, role, lf)
		if err != nil {
			return nil, err
		}
		payments, err := r.source.ListPaymentEntries(ctx, p.Code, role, pw)
		if err != nil {
			return nil, err
		}
		p.Role = role
		sections = append(sections, report.Assemble(p, summary, entries, payments))
	}
	return sections, nil
}

func (r *Run) fail(log zerolog.Logger, res Result, err error) Result {
	res.Success = false
	res.TotalCustomers, res.TotalSuppliers, res.TotalSheets = 0, 0, 0
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Message = "export cancelled: " + err.Error()
	case errors.Is(err, ledger.ErrDataAccess):
		res.Message = "export failed while reading the ledger: " + err.Error()
	default:
		res.Message = "export failed: " + err.Error()
	}
	log.Error().Err(err).Msg("reconciliation failed")
	return res
}
