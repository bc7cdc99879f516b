package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

// TransitionPayload carries action specific free-form parameters, e.g. signer
// metadata for contract activation. Stored as JSON when captured into an
// approval request.
type TransitionPayload map[string]string

func (t TransitionPayload) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *TransitionPayload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		*t = TransitionPayload{}
		return nil
	}
	return json.Unmarshal([]byte(jsonString), t)
}

// TransitionRequest is the value object carried from the REST layer into the
// workflow engine, and captured verbatim into an approval request so an
// approved replay runs with exactly the original parameters.
type TransitionRequest struct {
	EntityType EntityType        `json:"entityType"`
	EntityID   types.ID          `json:"entityId"`
	Action     string            `json:"action"`
	Reason     string            `json:"reason"`
	Payload    TransitionPayload `json:"payload"`

	// expected current version of the entity row
	Version int `json:"version"`

	CompanyID types.ID `json:"companyId"`
}

// EntitySnapshot is the loaded view of one workflow entity handed to the
// transition catalog, so catalog predicates stay free of I/O. Exactly one of
// Sale/Contract/Checklist is set, matching Type.
type EntitySnapshot struct {
	Type      EntityType
	ID        types.ID
	CompanyID types.ID
	Status    string
	Version   int

	Sale      *Sale
	Contract  *Contract
	Checklist *Checklist

	// populated for checklists only
	Items                []ChecklistItem
	ParentContractStatus ContractStatus
}
