package models

type Role struct {
	ID    uint64 `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Label string `gorm:"type:varchar(100);not null" json:"label"`
}
