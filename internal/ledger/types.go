package ledger

import (
	"fmt"

	"recon-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Entry is one sale (customer) or purchase (supplier) row.
type Entry struct {
	ID              uint            `gorm:"column:id" json:"id"`
	PartnerCode     string          `gorm:"column:partner_code" json:"partner_code"`
	ProductCode     string          `gorm:"column:product_code" json:"product_code"`
	ProductModel    string          `gorm:"column:product_model" json:"product_model"`
	Quantity        decimal.Decimal `gorm:"column:quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price" json:"total_price"`
	Date            string          `gorm:"column:entry_date" json:"date"`
	InvoiceNumber   string          `gorm:"column:invoice_number" json:"invoice_number"`
	InvoiceImageURL string          `gorm:"column:invoice_image_url" json:"invoice_image_url"`
	OrderNumber     string          `gorm:"column:order_number" json:"order_number"`
	Remark          string          `gorm:"column:remark" json:"remark"`
}

// Payment is one receipt from a customer or payment to a supplier.
type Payment struct {
	ID          uint            `gorm:"column:id" json:"id"`
	PartnerCode string          `gorm:"column:partner_code" json:"partner_code"`
	Amount      decimal.Decimal `gorm:"column:amount" json:"amount"`
	PayDate     string          `gorm:"column:pay_date" json:"pay_date"`
	PayMethod   string          `gorm:"column:pay_method" json:"pay_method"`
	Remark      string          `gorm:"column:remark" json:"remark"`
}

// Summary is a partner's position over its whole history.
type Summary struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Balance decimal.Decimal `json:"balance"`
}

func NewSummary(total, paid decimal.Decimal) Summary {
	return Summary{Total: total, Paid: paid, Balance: total.Sub(paid)}
}

// direction holds the tables and columns implied by a partner role.
type direction struct {
	ledgerTable   string
	paymentTable  string
	partnerColumn string
	dateColumn    string
}

var directions = map[models.PartnerRole]direction{
	models.PartnerCustomer: {
		ledgerTable:   "outbound_records",
		paymentTable:  "receivable_payments",
		partnerColumn: "customer_code",
		dateColumn:    "outbound_date",
	},
	models.PartnerSupplier: {
		ledgerTable:   "inbound_records",
		paymentTable:  "payable_payments",
		partnerColumn: "supplier_code",
		dateColumn:    "inbound_date",
	},
}

func directionFor(role models.PartnerRole) (direction, error) {
	d, ok := directions[role]
	if !ok {
		return direction{}, fmt.Errorf("%w: %d", ErrUnknownRole, int(role))
	}
	return d, nil
}
