package domain

import (
	"github.com/fundwit/go-commons/types"
)

type SaleStatus string

const (
	SaleStatusNew      = SaleStatus("NEW")
	SaleStatusProposal = SaleStatus("PROPOSAL")
	SaleStatusWon      = SaleStatus("WON")
	SaleStatusLost     = SaleStatus("LOST")
)

const (
	ActionSaleSetProposal = "SALE_SET_PROPOSAL"
	ActionSaleMarkWon     = "SALE_MARK_WON"
	ActionSaleMarkLost    = "SALE_MARK_LOST"
)

type Sale struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	CompanyID  types.ID `json:"companyId"`
	CustomerID types.ID `json:"customerId"`

	Status  SaleStatus `json:"status"`
	Version int        `json:"version"`

	LostReason string `json:"lostReason"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (s *Sale) TableName() string {
	return "sales"
}
