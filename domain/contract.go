package domain

import (
	"github.com/fundwit/go-commons/types"
)

type ContractStatus string

const (
	ContractStatusDraft     = ContractStatus("DRAFT")
	ContractStatusActive    = ContractStatus("ACTIVE")
	ContractStatusSuspended = ContractStatus("SUSPENDED")
	ContractStatusCompleted = ContractStatus("COMPLETED")
	ContractStatusCancelled = ContractStatus("CANCELLED")
)

const (
	ActionContractRequestSignature = "CONTRACT_REQUEST_SIGNATURE"
	ActionContractActivate         = "CONTRACT_ACTIVATE"
	ActionContractSuspend          = "CONTRACT_SUSPEND"
	ActionContractResume           = "CONTRACT_RESUME"
	ActionContractComplete         = "CONTRACT_COMPLETE"
	ActionContractCancel           = "CONTRACT_CANCEL"
)

type Contract struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	CompanyID types.ID `json:"companyId"`

	// zero when the contract was created directly instead of from a won sale
	SaleID     types.ID `json:"saleId"`
	CustomerID types.ID `json:"customerId"`
	ProjectID  types.ID `json:"projectId"`
	TemplateID types.ID `json:"templateId"`

	TotalValue int64 `json:"totalValue"`

	Status  ContractStatus `json:"status"`
	Version int            `json:"version"`

	SentAt      types.Timestamp `json:"sentAt" sql:"type:DATETIME(6)"`
	SignedAt    types.Timestamp `json:"signedAt" sql:"type:DATETIME(6)"`
	SignerName  string          `json:"signerName"`
	SignerEmail string          `json:"signerEmail"`

	SuspendReason string `json:"suspendReason"`
	CancelReason  string `json:"cancelReason"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *Contract) TableName() string {
	return "contracts"
}
