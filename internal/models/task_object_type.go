package models

// TaskObjectType is a catalog entry naming the reason a task exists.
// Rows are append-only: nothing deletes them.
type TaskObjectType struct {
	ID    uint64 `gorm:"primarykey" json:"id"`
	Code  string `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Label string `gorm:"type:varchar(255);not null" json:"label"`
}
