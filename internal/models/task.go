package models

import (
	"errors"
	"time"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusWaiting    TaskStatus = "Waiting"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses lists every status in display order
var TaskStatuses = []TaskStatus{
	TaskStatusToDo,
	TaskStatusInProgress,
	TaskStatusWaiting,
	TaskStatusDone,
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TargetType string

const (
	TargetTypeBeneficiary  TargetType = "beneficiary"
	TargetTypeReferent     TargetType = "referent"
	TargetTypeSponsor      TargetType = "sponsor"
	TargetTypeBackOffice   TargetType = "backoffice"
	TargetTypeOrganization TargetType = "organization"
	TargetTypeOther        TargetType = "other"
)

var (
	ErrUnknownTargetType = errors.New("unknown target type")
	ErrTargetIDRequired  = errors.New("target id is required for this target type")
)

// Target is the entity a task is about. The concrete types form a closed set.
type Target interface {
	Type() TargetType
	isTarget()
}

type BeneficiaryTarget struct{ ID uint64 }
type ReferentTarget struct{ ID uint64 }
type SponsorTarget struct{ ID uint64 }
type BackOfficeTarget struct{}
type OrganizationTarget struct{}
type OtherTarget struct{}

func (BeneficiaryTarget) Type() TargetType  { return TargetTypeBeneficiary }
func (ReferentTarget) Type() TargetType     { return TargetTypeReferent }
func (SponsorTarget) Type() TargetType      { return TargetTypeSponsor }
func (BackOfficeTarget) Type() TargetType   { return TargetTypeBackOffice }
func (OrganizationTarget) Type() TargetType { return TargetTypeOrganization }
func (OtherTarget) Type() TargetType        { return TargetTypeOther }

func (BeneficiaryTarget) isTarget()  {}
func (ReferentTarget) isTarget()     {}
func (SponsorTarget) isTarget()      {}
func (BackOfficeTarget) isTarget()   {}
func (OrganizationTarget) isTarget() {}
func (OtherTarget) isTarget()        {}

// NewTarget builds a Target from its stored form. The id is ignored for
// target types that do not point at a record.
func NewTarget(t TargetType, id *uint64) (Target, error) {
	switch t {
	case TargetTypeBeneficiary, TargetTypeReferent, TargetTypeSponsor:
		if id == nil || *id == 0 {
			return nil, ErrTargetIDRequired
		}
		switch t {
		case TargetTypeBeneficiary:
			return BeneficiaryTarget{ID: *id}, nil
		case TargetTypeReferent:
			return ReferentTarget{ID: *id}, nil
		default:
			return SponsorTarget{ID: *id}, nil
		}
	case TargetTypeBackOffice:
		return BackOfficeTarget{}, nil
	case TargetTypeOrganization:
		return OrganizationTarget{}, nil
	case TargetTypeOther:
		return OtherTarget{}, nil
	}
	return nil, ErrUnknownTargetType
}

// TargetRecordID returns the referenced record id, if the target has one
func TargetRecordID(t Target) (uint64, bool) {
	switch v := t.(type) {
	case BeneficiaryTarget:
		return v.ID, true
	case ReferentTarget:
		return v.ID, true
	case SponsorTarget:
		return v.ID, true
	}
	return 0, false
}

type Task struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description"`
	ObjectTypeID uint64     `gorm:"not null;index" json:"object_type_id"`
	Status       TaskStatus `gorm:"type:varchar(20);not null;default:'ToDo';index" json:"status"`
	StartDate    time.Time  `gorm:"type:date;not null;index" json:"start_date"`
	EndDate      *time.Time `gorm:"type:date" json:"end_date"`
	TargetType   TargetType `gorm:"type:varchar(20);not null" json:"target_type"`
	// TargetID is a soft reference: the record may be deleted later
	TargetID    *uint64   `json:"target_id"`
	CreatedByID *uint64   `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	ObjectType  TaskObjectType   `gorm:"foreignKey:ObjectTypeID;constraint:OnDelete:RESTRICT" json:"object_type,omitempty"`
	CreatedBy   *User            `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Comments    []TaskComment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}

// Target rebuilds the typed target from the stored columns. A pool target
// with a missing id keeps id 0, which never resolves.
func (t Task) Target() Target {
	target, err := NewTarget(t.TargetType, t.TargetID)
	if err == nil {
		return target
	}
	switch t.TargetType {
	case TargetTypeBeneficiary:
		return BeneficiaryTarget{}
	case TargetTypeReferent:
		return ReferentTarget{}
	case TargetTypeSponsor:
		return SponsorTarget{}
	}
	return OtherTarget{}
}

// SetTarget stores the target columns
func (t *Task) SetTarget(target Target) {
	t.TargetType = target.Type()
	t.TargetID = nil
	if id, ok := TargetRecordID(target); ok {
		t.TargetID = &id
	}
}

// AssigneeIDs returns the ids of the preloaded assignments
func (t Task) AssigneeIDs() []uint64 {
	ids := make([]uint64, len(t.Assignments))
	for i, a := range t.Assignments {
		ids[i] = a.UserID
	}
	return ids
}

// IsAssigned reports whether userID is among the preloaded assignees
func (t Task) IsAssigned(userID uint64) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
