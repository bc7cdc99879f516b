package engine

import (
	"errors"
	"sunflow/bizerror"
	"sunflow/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// entityStore is the typed storage contract per entity type: a company scoped
// load into a snapshot, a compare-and-swap style conditional update, and a
// re-read of the updated row. The version predicate of conditionalUpdate is
// the only concurrency control primitive in this engine.
type entityStore interface {
	load(db *gorm.DB, id types.ID) (*domain.EntitySnapshot, error)
	conditionalUpdate(tx *gorm.DB, id types.ID, expectedVersion int, patch map[string]interface{}) (int64, error)
	reload(tx *gorm.DB, id types.ID) (interface{}, error)
}

func storeOf(entityType domain.EntityType) (entityStore, error) {
	switch entityType {
	case domain.EntityTypeSale:
		return saleStore{}, nil
	case domain.EntityTypeContract:
		return contractStore{}, nil
	case domain.EntityTypeChecklist:
		return checklistStore{}, nil
	}
	return nil, bizerror.ErrUnknownEntityType
}

type saleStore struct{}

func (saleStore) load(db *gorm.DB, id types.ID) (*domain.EntitySnapshot, error) {
	var sale domain.Sale
	if err := db.Where(&domain.Sale{ID: id}).First(&sale).Error; err != nil {
		return nil, err
	}
	return &domain.EntitySnapshot{
		Type: domain.EntityTypeSale, ID: sale.ID, CompanyID: sale.CompanyID,
		Status: string(sale.Status), Version: sale.Version, Sale: &sale,
	}, nil
}

func (saleStore) conditionalUpdate(tx *gorm.DB, id types.ID, expectedVersion int, patch map[string]interface{}) (int64, error) {
	db := tx.Model(&domain.Sale{}).Where("id = ? AND version = ?", id, expectedVersion).Updates(patch)
	return db.RowsAffected, db.Error
}

func (saleStore) reload(tx *gorm.DB, id types.ID) (interface{}, error) {
	var sale domain.Sale
	if err := tx.Where(&domain.Sale{ID: id}).First(&sale).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

type contractStore struct{}

func (contractStore) load(db *gorm.DB, id types.ID) (*domain.EntitySnapshot, error) {
	var contract domain.Contract
	if err := db.Where(&domain.Contract{ID: id}).First(&contract).Error; err != nil {
		return nil, err
	}
	return &domain.EntitySnapshot{
		Type: domain.EntityTypeContract, ID: contract.ID, CompanyID: contract.CompanyID,
		Status: string(contract.Status), Version: contract.Version, Contract: &contract,
	}, nil
}

func (contractStore) conditionalUpdate(tx *gorm.DB, id types.ID, expectedVersion int, patch map[string]interface{}) (int64, error) {
	db := tx.Model(&domain.Contract{}).Where("id = ? AND version = ?", id, expectedVersion).Updates(patch)
	return db.RowsAffected, db.Error
}

func (contractStore) reload(tx *gorm.DB, id types.ID) (interface{}, error) {
	var contract domain.Contract
	if err := tx.Where(&domain.Contract{ID: id}).First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

type checklistStore struct{}

func (checklistStore) load(db *gorm.DB, id types.ID) (*domain.EntitySnapshot, error) {
	var checklist domain.Checklist
	if err := db.Where(&domain.Checklist{ID: id}).First(&checklist).Error; err != nil {
		return nil, err
	}

	var items []domain.ChecklistItem
	if err := db.Where(&domain.ChecklistItem{ChecklistID: checklist.ID}).
		Order("order_num ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	snapshot := domain.EntitySnapshot{
		Type: domain.EntityTypeChecklist, ID: checklist.ID, CompanyID: checklist.CompanyID,
		Status: string(checklist.Status), Version: checklist.Version,
		Checklist: &checklist, Items: items,
	}

	var contract domain.Contract
	err := db.Where(&domain.Contract{ID: checklist.ContractID}).Select("status").First(&contract).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	snapshot.ParentContractStatus = contract.Status

	return &snapshot, nil
}

func (checklistStore) conditionalUpdate(tx *gorm.DB, id types.ID, expectedVersion int, patch map[string]interface{}) (int64, error) {
	db := tx.Model(&domain.Checklist{}).Where("id = ? AND version = ?", id, expectedVersion).Updates(patch)
	return db.RowsAffected, db.Error
}

func (checklistStore) reload(tx *gorm.DB, id types.ID) (interface{}, error) {
	var checklist domain.Checklist
	if err := tx.Where(&domain.Checklist{ID: id}).First(&checklist).Error; err != nil {
		return nil, err
	}
	return &checklist, nil
}
