package models

import "github.com/shopspring/decimal"

// OutboundRecord - müşteriye satış (alacak doğurur)
type OutboundRecord struct {
	ID              uint            `gorm:"primaryKey"`
	CustomerCode    string          `gorm:"column:customer_code;index;size:64"`
	ProductCode     string          `gorm:"column:product_code;size:64"`
	ProductModel    string          `gorm:"column:product_model;size:255"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:decimal(20,5)"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:decimal(20,5)"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:decimal(20,5)"`
	OutboundDate    string          `gorm:"column:outbound_date;size:10;index"` // "2025-12-09"
	InvoiceNumber   string          `gorm:"column:invoice_number;size:100"`
	InvoiceImageURL string          `gorm:"column:invoice_image_url;size:500"`
	OrderNumber     string          `gorm:"column:order_number;size:100"`
	Remark          string          `gorm:"column:remark;size:500"`
}

func (OutboundRecord) TableName() string { return "outbound_records" }

// InboundRecord - tedarikçiden alım (borç doğurur)
type InboundRecord struct {
	ID              uint            `gorm:"primaryKey"`
	SupplierCode    string          `gorm:"column:supplier_code;index;size:64"`
	ProductCode     string          `gorm:"column:product_code;size:64"`
	ProductModel    string          `gorm:"column:product_model;size:255"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:decimal(20,5)"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:decimal(20,5)"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:decimal(20,5)"`
	InboundDate     string          `gorm:"column:inbound_date;size:10;index"`
	InvoiceNumber   string          `gorm:"column:invoice_number;size:100"`
	InvoiceImageURL string          `gorm:"column:invoice_image_url;size:500"`
	OrderNumber     string          `gorm:"column:order_number;size:100"`
	Remark          string          `gorm:"column:remark;size:500"`
}

func (InboundRecord) TableName() string { return "inbound_records" }

// ReceivablePayment - müşteriden tahsilat
type ReceivablePayment struct {
	ID           uint            `gorm:"primaryKey"`
	CustomerCode string          `gorm:"column:customer_code;index;size:64"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,5)"`
	PayDate      string          `gorm:"column:pay_date;size:10;index"`
	PayMethod    string          `gorm:"column:pay_method;size:50"`
	Remark       string          `gorm:"column:remark;size:500"`
}

func (ReceivablePayment) TableName() string { return "receivable_payments" }

// PayablePayment - tedarikçiye ödeme
type PayablePayment struct {
	ID           uint            `gorm:"primaryKey"`
	SupplierCode string          `gorm:"column:supplier_code;index;size:64"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,5)"`
	PayDate      string          `gorm:"column:pay_date;size:10;index"`
	PayMethod    string          `gorm:"column:pay_method;size:50"`
	Remark       string          `gorm:"column:remark;size:500"`
}

func (PayablePayment) TableName() string { return "payable_payments" }

// LedgerTables - mutabakatın okuduğu tablolar (test fixture'ları ve sqlite kurulumu için)
func LedgerTables() []any {
	return []any{
		&Partner{},
		&OutboundRecord{},
		&InboundRecord{},
		&ReceivablePayment{},
		&PayablePayment{},
	}
}
