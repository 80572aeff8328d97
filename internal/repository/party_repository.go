package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// GormPartyPool reads one person table (beneficiaries, sponsors or referents).
// All three tables share the id, first_name and last_name columns.
type GormPartyPool struct {
	db    *gorm.DB
	table string
}

func NewBeneficiaryPool(db *gorm.DB) PartyPool {
	return &GormPartyPool{db: db, table: "beneficiaries"}
}

func NewSponsorPool(db *gorm.DB) PartyPool {
	return &GormPartyPool{db: db, table: "sponsors"}
}

func NewReferentPool(db *gorm.DB) PartyPool {
	return &GormPartyPool{db: db, table: "referents"}
}

// Exists reports whether the record exists
func (p *GormPartyPool) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Table(p.table).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Labels returns "First Last" for each found id in a single query
func (p *GormPartyPool) Labels(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	labels := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	var rows []struct {
		ID        uint64
		FirstName string
		LastName  string
	}
	if err := p.db.WithContext(ctx).
		Table(p.table).
		Select("id, first_name, last_name").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		labels[row.ID] = strings.TrimSpace(row.FirstName + " " + row.LastName)
	}
	return labels, nil
}
