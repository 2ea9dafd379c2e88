package models

import (
	"fmt"
	"strings"
)

// PartnerRole - partners.type kolonu: 0 tedarikçi (borç), 1 müşteri (alacak)
type PartnerRole int

const (
	PartnerSupplier PartnerRole = 0
	PartnerCustomer PartnerRole = 1
)

func (r PartnerRole) String() string {
	switch r {
	case PartnerCustomer:
		return "customer"
	case PartnerSupplier:
		return "supplier"
	default:
		return fmt.Sprintf("PartnerRole(%d)", int(r))
	}
}

func (r PartnerRole) Valid() bool {
	return r == PartnerCustomer || r == PartnerSupplier
}

// ParsePartnerRole - "customer"/"supplier" ya da kayıtlı 1/0 değerini kabul eder
func ParsePartnerRole(s string) (PartnerRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer", "receivable", "1":
		return PartnerCustomer, nil
	case "supplier", "payable", "0":
		return PartnerSupplier, nil
	}
	return 0, fmt.Errorf("unknown partner role %q", s)
}

// Partner - müşteri veya tedarikçi
type Partner struct {
	Code          string      `gorm:"column:code;primaryKey;size:64"`
	Role          PartnerRole `gorm:"column:type;not null"`
	ShortName     string      `gorm:"column:short_name;size:100"`
	FullName      string      `gorm:"column:full_name;size:255"`
	Address       string      `gorm:"column:address;size:255"`
	ContactPerson string      `gorm:"column:contact_person;size:100"`
	ContactPhone  string      `gorm:"column:contact_phone;size:50"`
}

func (Partner) TableName() string { return "partners" }

// DisplayName - kısa ad varsa o, yoksa kod
func (p Partner) DisplayName() string {
	if p.ShortName != "" {
		return p.ShortName
	}
	return p.Code
}
