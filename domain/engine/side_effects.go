package engine

import (
	"errors"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/idgen"
	"sunflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	contractIdWorker  = sonyflake.NewSonyflake(sonyflake.Settings{})
	checklistIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
)

const defaultBlockedReason = "contract cancelled"

// SideEffectFunc runs inside the same transaction as the status write; any
// error aborts the transition as a whole.
type SideEffectFunc func(tx *gorm.DB, req *domain.TransitionRequest,
	snapshot *domain.EntitySnapshot, now types.Timestamp, s *session.Session) error

// side effects registered per action, invoked by Transition only after the
// conditional update matched
var sideEffects = map[string]SideEffectFunc{
	domain.ActionSaleMarkWon:      provisionDraftContract,
	domain.ActionContractCancel:   blockContractChecklists,
	domain.ActionContractActivate: provisionChecklist,
}

// provisionDraftContract creates a zero value DRAFT contract for a won sale,
// from the company's newest active contract template and the customer's
// newest project. A missing template or project is tolerated silently, the
// sale transition stands on its own.
func provisionDraftContract(tx *gorm.DB, req *domain.TransitionRequest,
	snapshot *domain.EntitySnapshot, now types.Timestamp, s *session.Session) error {

	sale := snapshot.Sale

	var count int
	if err := tx.Model(&domain.Contract{}).Where("sale_id = ?", sale.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var template domain.ContractTemplate
	err := tx.Where(&domain.ContractTemplate{CompanyID: sale.CompanyID, IsActive: true}).
		Order("create_time DESC").First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	var project domain.Project
	err = tx.Where(&domain.Project{CompanyID: sale.CompanyID, CustomerID: sale.CustomerID}).
		Order("create_time DESC").First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	contract := domain.Contract{
		ID:        idgen.NextID(contractIdWorker),
		CompanyID: sale.CompanyID,

		SaleID:     sale.ID,
		CustomerID: sale.CustomerID,
		ProjectID:  project.ID,
		TemplateID: template.ID,

		TotalValue: 0,
		Status:     domain.ContractStatusDraft,
		Version:    1,
		CreateTime: now,
	}
	return tx.Create(&contract).Error
}

// blockContractChecklists suppresses further transitions on every checklist
// of a cancelled contract.
func blockContractChecklists(tx *gorm.DB, req *domain.TransitionRequest,
	snapshot *domain.EntitySnapshot, now types.Timestamp, s *session.Session) error {

	reason := req.Reason
	if reason == "" {
		reason = defaultBlockedReason
	}
	return tx.Model(&domain.Checklist{}).Where("contract_id = ?", snapshot.Contract.ID).
		Updates(map[string]interface{}{
			"blocked_at":     now,
			"blocked_reason": reason,
			"version":        gorm.Expr("version + 1"),
		}).Error
}

// provisionChecklist creates the implementation checklist of a freshly
// activated contract from the company's default checklist template. Skipped
// for contracts without a sale reference, and idempotent when a checklist
// already exists.
func provisionChecklist(tx *gorm.DB, req *domain.TransitionRequest,
	snapshot *domain.EntitySnapshot, now types.Timestamp, s *session.Session) error {

	contract := snapshot.Contract
	if contract.SaleID == 0 {
		return nil
	}

	var count int
	if err := tx.Model(&domain.Checklist{}).Where("contract_id = ?", contract.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var template domain.ChecklistTemplate
	err := tx.Where(&domain.ChecklistTemplate{CompanyID: contract.CompanyID, IsDefault: true}).
		Order("create_time DESC").First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return bizerror.ErrChecklistTemplateMissing
	} else if err != nil {
		return err
	}

	var templateItems []domain.ChecklistTemplateItem
	if err := tx.Where(&domain.ChecklistTemplateItem{TemplateID: template.ID}).
		Order("order_num ASC").Find(&templateItems).Error; err != nil {
		return err
	}

	checklist := domain.Checklist{
		ID:         idgen.NextID(checklistIdWorker),
		CompanyID:  contract.CompanyID,
		ContractID: contract.ID,
		Status:     domain.ChecklistStatusNotStarted,
		Version:    1,
		CreateTime: now,
	}
	if err := tx.Create(&checklist).Error; err != nil {
		return err
	}

	for _, templateItem := range templateItems {
		item := domain.ChecklistItem{
			ID:          idgen.NextID(checklistIdWorker),
			ChecklistID: checklist.ID,

			Name:       templateItem.Name,
			IsRequired: templateItem.IsRequired,
			Status:     domain.ChecklistItemStatusPending,
			OrderNum:   templateItem.OrderNum,

			CreateTime: now,
		}
		// due date only when the signature time is known
		if !contract.SignedAt.IsZero() {
			item.DueTime = types.Timestamp(contract.SignedAt.Time().Add(
				time.Duration(templateItem.DueDayOffset) * 24 * time.Hour))
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}
