package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sunflow/bizerror"

	"github.com/fundwit/go-commons/types"
)

type ApprovalStatus string

const (
	ApprovalStatusPending   = ApprovalStatus("PENDING")
	ApprovalStatusApproved  = ApprovalStatus("APPROVED")
	ApprovalStatusRejected  = ApprovalStatus("REJECTED")
	ApprovalStatusCancelled = ApprovalStatus("CANCELLED")
)

type ApprovalDecision string

const (
	ApprovalDecisionApprove = ApprovalDecision("APPROVE")
	ApprovalDecisionReject  = ApprovalDecision("REJECT")
)

// ApprovalPayload snapshots the reason/payload/version of the gated
// transition at request time. Validated when captured and again before
// replay, so a corrupted row fails loudly instead of replaying something
// different.
type ApprovalPayload struct {
	Reason  string            `json:"reason"`
	Payload TransitionPayload `json:"payload"`
	Version int               `json:"version"`
}

func (p ApprovalPayload) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&p)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (p *ApprovalPayload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		return bizerror.ErrApprovalPayloadInvalid
	}
	return json.Unmarshal([]byte(jsonString), p)
}

func (p *ApprovalPayload) Validate() error {
	if p == nil || p.Version < 0 {
		return bizerror.ErrApprovalPayloadInvalid
	}
	return nil
}

type ApprovalRequest struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	CompanyID types.ID `json:"companyId"`

	EntityType EntityType `json:"entityType"`
	EntityID   types.ID   `json:"entityId"`
	Action     string     `json:"action"`

	Payload ApprovalPayload `json:"payload" sql:"type:TEXT"`

	RequestedBy     types.ID `json:"requestedBy"`
	RequestedByName string   `json:"requestedByName"`

	Status ApprovalStatus `json:"status"`

	DecidedBy     types.ID        `json:"decidedBy"`
	DecidedByName string          `json:"decidedByName"`
	DecidedAt     types.Timestamp `json:"decidedAt" sql:"type:DATETIME(6)"`
	DecisionNote  string          `json:"decisionNote"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *ApprovalRequest) TableName() string {
	return "approval_requests"
}
