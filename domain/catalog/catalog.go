package catalog

import (
	"sunflow/bizerror"
	"sunflow/domain"

	"github.com/fundwit/go-commons/types"
)

// TransitionDefinition declares one named transition of an entity type.
// Definitions are pure data plus side effect free predicates: the engine
// evaluates them both to answer "what is allowed right now" and to gate a
// real transition, so they must be safely callable any number of times.
type TransitionDefinition struct {
	Action         string
	AllowedFrom    []string
	ToStatus       string // empty when the action keeps the current status
	RequiresReason bool

	// RequiresApproval defers the transition behind a human decision. A nil
	// predicate means the transition is never gated. Evaluated against the
	// entity state before the transition.
	RequiresApproval func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) bool

	// Validate rejects the transition on a domain rule violation. Nil means
	// no extra rule beyond the AllowedFrom check.
	Validate func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) error

	// Apply returns the action specific column patch. Status and version are
	// always written by the engine and never appear here.
	Apply func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{}
}

func (d *TransitionDefinition) AllowsFrom(status string) bool {
	for _, s := range d.AllowedFrom {
		if s == status {
			return true
		}
	}
	return false
}

var saleTransitions = []TransitionDefinition{
	{
		Action:      domain.ActionSaleSetProposal,
		AllowedFrom: []string{string(domain.SaleStatusNew)},
		ToStatus:    string(domain.SaleStatusProposal),
	},
	{
		Action:      domain.ActionSaleMarkWon,
		AllowedFrom: []string{string(domain.SaleStatusProposal)},
		ToStatus:    string(domain.SaleStatusWon),
	},
	{
		Action:         domain.ActionSaleMarkLost,
		AllowedFrom:    []string{string(domain.SaleStatusNew), string(domain.SaleStatusProposal)},
		ToStatus:       string(domain.SaleStatusLost),
		RequiresReason: true,
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"lost_reason": req.Reason}
		},
	},
}

var contractTransitions = []TransitionDefinition{
	{
		Action:      domain.ActionContractRequestSignature,
		AllowedFrom: []string{string(domain.ContractStatusDraft)},
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"sent_at": now}
		},
	},
	{
		Action:      domain.ActionContractActivate,
		AllowedFrom: []string{string(domain.ContractStatusDraft)},
		ToStatus:    string(domain.ContractStatusActive),
		Validate: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) error {
			if snapshot.Contract.SignedAt.IsZero() {
				return bizerror.ErrContractNotSigned
			}
			return nil
		},
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			patch := map[string]interface{}{}
			if signer, ok := req.Payload["signerName"]; ok {
				patch["signer_name"] = signer
			}
			if email, ok := req.Payload["signerEmail"]; ok {
				patch["signer_email"] = email
			}
			return patch
		},
	},
	{
		Action:         domain.ActionContractSuspend,
		AllowedFrom:    []string{string(domain.ContractStatusActive)},
		ToStatus:       string(domain.ContractStatusSuspended),
		RequiresReason: true,
		RequiresApproval: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) bool {
			return true
		},
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"suspend_reason": req.Reason}
		},
	},
	{
		Action:         domain.ActionContractResume,
		AllowedFrom:    []string{string(domain.ContractStatusSuspended)},
		ToStatus:       string(domain.ContractStatusActive),
		RequiresReason: true,
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"suspend_reason": ""}
		},
	},
	{
		Action:      domain.ActionContractComplete,
		AllowedFrom: []string{string(domain.ContractStatusActive)},
		ToStatus:    string(domain.ContractStatusCompleted),
	},
	{
		Action: domain.ActionContractCancel,
		AllowedFrom: []string{string(domain.ContractStatusDraft),
			string(domain.ContractStatusActive), string(domain.ContractStatusSuspended)},
		ToStatus:       string(domain.ContractStatusCancelled),
		RequiresReason: true,
		RequiresApproval: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) bool {
			return snapshot.Status == string(domain.ContractStatusActive) ||
				snapshot.Status == string(domain.ContractStatusSuspended)
		},
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"cancel_reason": req.Reason}
		},
	},
}

var checklistTransitions = []TransitionDefinition{
	{
		Action:      domain.ActionChecklistStart,
		AllowedFrom: []string{string(domain.ChecklistStatusNotStarted)},
		ToStatus:    string(domain.ChecklistStatusInProgress),
		Validate: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) error {
			if snapshot.ParentContractStatus != domain.ContractStatusActive {
				return bizerror.ErrParentContractNotActive
			}
			return nil
		},
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"started_at": now}
		},
	},
	{
		Action:      domain.ActionChecklistFinish,
		AllowedFrom: []string{string(domain.ChecklistStatusInProgress)},
		ToStatus:    string(domain.ChecklistStatusDone),
		Validate: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot) error {
			// vacuously valid for a checklist without items
			for _, item := range snapshot.Items {
				if item.IsRequired && item.Status != domain.ChecklistItemStatusDone {
					return bizerror.ErrChecklistItemsNotDone
				}
			}
			return nil
		},
		Apply: func(req *domain.TransitionRequest, snapshot *domain.EntitySnapshot, now types.Timestamp) map[string]interface{} {
			return map[string]interface{}{"finished_at": now}
		},
	},
}

func TransitionsFor(entityType domain.EntityType) ([]TransitionDefinition, error) {
	switch entityType {
	case domain.EntityTypeSale:
		return saleTransitions, nil
	case domain.EntityTypeContract:
		return contractTransitions, nil
	case domain.EntityTypeChecklist:
		return checklistTransitions, nil
	}
	return nil, bizerror.ErrUnknownEntityType
}

func FindTransition(entityType domain.EntityType, action string) (*TransitionDefinition, error) {
	definitions, err := TransitionsFor(entityType)
	if err != nil {
		return nil, err
	}
	for i := range definitions {
		if definitions[i].Action == action {
			return &definitions[i], nil
		}
	}
	return nil, bizerror.ErrUnknownAction
}
