package audit

import (
	"sunflow/domain"

	"github.com/fundwit/go-commons/types"
)

type AuditCategory string

const (
	CategoryTransitionApplied = AuditCategory("TRANSITION_APPLIED")
	CategoryApprovalRequested = AuditCategory("APPROVAL_REQUESTED")
	CategoryApprovalApproved  = AuditCategory("APPROVAL_APPROVED")
	CategoryApprovalRejected  = AuditCategory("APPROVAL_REJECTED")
)

// AuditRecord rows are append only. They are the system of record for what
// happened when, never an input to authorization decisions.
type AuditRecord struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	CompanyID types.ID `json:"companyId"`

	EntityType domain.EntityType `json:"entityType"`
	EntityID   types.ID          `json:"entityId"`
	Action     string            `json:"action"`
	Category   AuditCategory     `json:"category"`

	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Reason     string `json:"reason"`

	Detail domain.TransitionPayload `json:"detail" sql:"type:TEXT"`

	ActorID   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *AuditRecord) TableName() string {
	return "audit_records"
}
