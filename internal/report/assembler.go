// Package report turns a partner's summary and detail rows into a printable
// section. Nothing here touches the database or the filesystem.
package report

import (
	"fmt"
	"strings"

	"recon-backend/internal/ledger"
	"recon-backend/internal/models"
)

// MaxSectionIDLength is the sheet-name ceiling of the xlsx format.
const MaxSectionIDLength = 31

var sectionIDReplacer = strings.NewReplacer(
	`\`, "-", "/", "-", "*", "-", "?", "-", ":", "-", "[", "-", "]", "-",
)

// Row is one line of a section; an empty Row is a block separator.
type Row []any

// Section is the self-contained report unit for one partner.
type Section struct {
	ID          string
	DisplayName string
	Role        models.PartnerRole
	Partner     models.Partner
	Summary     ledger.Summary
	Ledger      []ledger.Entry
	Payments    []ledger.Payment
	Rows        []Row
}

// SectionID derives the sheet identifier from a display name. Forbidden
// characters become '-' and the result is cut to 31 characters. Distinct
// names may collide; that is left to the writer.
func SectionID(displayName string) string {
	id := sectionIDReplacer.Replace(displayName)
	if r := []rune(id); len(r) > MaxSectionIDLength {
		id = string(r[:MaxSectionIDLength])
	}
	return id
}

type labels struct {
	total        string
	paid         string
	ledgerTitle  string
	paymentTitle string
}

func labelsFor(role models.PartnerRole) labels {
	if role == models.PartnerCustomer {
		return labels{total: "总应收", paid: "已回款", ledgerTitle: "全部出库记录", paymentTitle: "全部回款记录"}
	}
	return labels{total: "总应付", paid: "已付款", ledgerTitle: "全部入库记录", paymentTitle: "全部付款记录"}
}

var (
	identityHeader = Row{"简称", "全称", "代号", "地址", "联系人", "电话"}
	ledgerHeader   = Row{"单号", "产品代号", "产品型号", "数量", "单价", "总价", "日期", "发票号", "订单号", "备注"}
	paymentHeader  = Row{"记录ID", "金额", "日期", "方式", "备注"}
)

// Assemble lays out identity, summary, ledger and payment blocks in that
// order, separated by empty rows. Role labels follow the partner's role.
func Assemble(partner models.Partner, summary ledger.Summary, entries []ledger.Entry, payments []ledger.Payment) Section {
	l := labelsFor(partner.Role)
	name := partner.DisplayName()

	rows := make([]Row, 0, 12+len(entries)+len(payments))
	rows = append(rows,
		identityHeader,
		Row{partner.ShortName, partner.FullName, partner.Code, partner.Address, partner.ContactPerson, partner.ContactPhone},
		Row{},
		Row{l.total, l.paid, "余额"},
		Row{summary.Total, summary.Paid, summary.Balance},
		Row{},
		Row{l.ledgerTitle},
		ledgerHeader,
	)
	for _, e := range entries {
		rows = append(rows, Row{
			e.ID, e.ProductCode, e.ProductModel, e.Quantity, e.UnitPrice, e.TotalPrice,
			e.Date, e.InvoiceNumber, e.OrderNumber, e.Remark,
		})
	}
	rows = append(rows, Row{}, Row{l.paymentTitle}, paymentHeader)
	for _, p := range payments {
		rows = append(rows, Row{p.ID, p.Amount, p.PayDate, p.PayMethod, p.Remark})
	}

	return Section{
		ID:          SectionID(name),
		DisplayName: name,
		Role:        partner.Role,
		Partner:     partner,
		Summary:     summary,
		Ledger:      entries,
		Payments:    payments,
		Rows:        rows,
	}
}

// Disambiguate rewrites colliding section IDs to "<id> (2)", "<id> (3)", ...
// keeping the first occurrence untouched. This changes the output compared to
// the plain collision behaviour and is only applied when asked for.
func Disambiguate(sections []Section) []Section {
	seen := make(map[string]bool, len(sections))
	out := make([]Section, len(sections))
	for i, s := range sections {
		id := s.ID
		for n := 2; seen[strings.ToLower(id)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			base := []rune(s.ID)
			if limit := MaxSectionIDLength - len([]rune(suffix)); len(base) > limit {
				base = base[:limit]
			}
			id = string(base) + suffix
		}
		seen[strings.ToLower(id)] = true
		s.ID = id
		out[i] = s
	}
	return out
}
