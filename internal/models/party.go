package models

// Beneficiary, Sponsor and Referent are owned by the record-management side
// of the back office. Tasks only read them to validate and label targets.

type Beneficiary struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	LastName  string `gorm:"type:varchar(255);not null" json:"last_name"`
	FirstName string `gorm:"type:varchar(255);not null" json:"first_name"`
}

type Sponsor struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	LastName  string `gorm:"type:varchar(255);not null" json:"last_name"`
	FirstName string `gorm:"type:varchar(255);not null" json:"first_name"`
}

type Referent struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	LastName  string `gorm:"type:varchar(255);not null" json:"last_name"`
	FirstName string `gorm:"type:varchar(255);not null" json:"first_name"`
}
