package ledger

import (
	"context"

	"recon-backend/internal/models"

	"gorm.io/gorm"
)

// PartnerRepository reads the partners table.
type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// ListPartners returns every partner with the given role in storage order.
func (r *PartnerRepository) ListPartners(ctx context.Context, role models.PartnerRole) ([]models.Partner, error) {
	const op = "ListPartners"

	if !role.Valid() {
		return nil, &DataAccessError{Op: op, Table: "partners", Err: ErrUnknownRole}
	}

	var partners []models.Partner
	if err := r.db.WithContext(ctx).
		Where("type = ?", int(role)).
		Find(&partners).Error; err != nil {
		return nil, newDataAccessError(op, "partners", err)
	}
	return partners, nil
}

// FindPartner looks a single partner up by code. A missing partner is reported
// as (nil, nil).
func (r *PartnerRepository) FindPartner(ctx context.Context, code string) (*models.Partner, error) {
	const op = "FindPartner"

	var partners []models.Partner
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&partners).Error; err != nil {
		return nil, newDataAccessError(op, "partners", err)
	}
	if len(partners) == 0 {
		return nil, nil
	}
	return &partners[0], nil
}
