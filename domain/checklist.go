package domain

import (
	"github.com/fundwit/go-commons/types"
)

type ChecklistStatus string

const (
	ChecklistStatusNotStarted = ChecklistStatus("NOT_STARTED")
	ChecklistStatusInProgress = ChecklistStatus("IN_PROGRESS")
	ChecklistStatusDone       = ChecklistStatus("DONE")
)

const (
	ActionChecklistStart  = "CHECKLIST_START"
	ActionChecklistFinish = "CHECKLIST_FINISH"
)

type ChecklistItemStatus string

const (
	ChecklistItemStatusPending    = ChecklistItemStatus("PENDING")
	ChecklistItemStatusInProgress = ChecklistItemStatus("IN_PROGRESS")
	ChecklistItemStatusDone       = ChecklistItemStatus("DONE")
	ChecklistItemStatusBlocked    = ChecklistItemStatus("BLOCKED")
)

// Checklist tracks the implementation work of an active contract. A blocked
// checklist (BlockedAt set by contract cancellation) accepts no transition
// until the block is cleared.
type Checklist struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	CompanyID  types.ID `json:"companyId"`
	ContractID types.ID `json:"contractId"`

	Status  ChecklistStatus `json:"status"`
	Version int             `json:"version"`

	StartedAt  types.Timestamp `json:"startedAt" sql:"type:DATETIME(6)"`
	FinishedAt types.Timestamp `json:"finishedAt" sql:"type:DATETIME(6)"`

	BlockedAt     types.Timestamp `json:"blockedAt" sql:"type:DATETIME(6)"`
	BlockedReason string          `json:"blockedReason"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *Checklist) TableName() string {
	return "checklists"
}

func (c *Checklist) IsBlocked() bool {
	return !c.BlockedAt.IsZero()
}

type ChecklistItem struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	ChecklistID types.ID `json:"checklistId"`

	Name       string              `json:"name"`
	IsRequired bool                `json:"isRequired"`
	Status     ChecklistItemStatus `json:"status"`
	OrderNum   int                 `json:"orderNum"`

	DueTime types.Timestamp `json:"dueTime" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (i *ChecklistItem) TableName() string {
	return "checklist_items"
}
