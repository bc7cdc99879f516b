package domain

import (
	"github.com/fundwit/go-commons/types"
)

// rows below are owned by CRUD modules outside this core; the workflow engine
// only reads them while provisioning side effects

type Project struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	CompanyID  types.ID `json:"companyId"`
	CustomerID types.ID `json:"customerId"`
	Name       string   `json:"name"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (p *Project) TableName() string {
	return "projects"
}

type ContractTemplate struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	CompanyID types.ID `json:"companyId"`
	Name      string   `json:"name"`
	IsActive  bool     `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *ContractTemplate) TableName() string {
	return "contract_templates"
}

type ChecklistTemplate struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	CompanyID types.ID `json:"companyId"`
	Name      string   `json:"name"`
	IsDefault bool     `json:"isDefault"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *ChecklistTemplate) TableName() string {
	return "checklist_templates"
}

type ChecklistTemplateItem struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	TemplateID types.ID `json:"templateId"`

	Name       string `json:"name"`
	IsRequired bool   `json:"isRequired"`
	// days after contract signature until the item is due
	DueDayOffset int `json:"dueDayOffset"`
	OrderNum     int `json:"orderNum"`
}

func (i *ChecklistTemplateItem) TableName() string {
	return "checklist_template_items"
}
