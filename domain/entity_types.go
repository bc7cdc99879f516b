package domain

import (
	"sunflow/authority"
	"sunflow/bizerror"
)

type EntityType string

const (
	EntityTypeSale      = EntityType("SALE")
	EntityTypeContract  = EntityType("CONTRACT")
	EntityTypeChecklist = EntityType("CHECKLIST")
)

func ParseEntityType(value string) (EntityType, error) {
	switch EntityType(value) {
	case EntityTypeSale, EntityTypeContract, EntityTypeChecklist:
		return EntityType(value), nil
	}
	return "", bizerror.ErrUnknownEntityType
}

// ReadCapability returns the company scoped capability required to view
// entities of this type. Checklists are part of the work surface, sales and
// contracts of the contract surface.
func (t EntityType) ReadCapability() string {
	if t == EntityTypeChecklist {
		return authority.CapWorkRead
	}
	return authority.CapContractRead
}

func (t EntityType) WriteCapability() string {
	if t == EntityTypeChecklist {
		return authority.CapWorkWrite
	}
	return authority.CapContractWrite
}
