package ledger

import "gorm.io/gorm"

// Store bundles the read-side components over one database handle.
type Store struct {
	*PartnerRepository
	*Aggregator
	*DetailFilter
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		PartnerRepository: NewPartnerRepository(db),
		Aggregator:        NewAggregator(db),
		DetailFilter:      NewDetailFilter(db),
	}
}
