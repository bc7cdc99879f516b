package engine

import (
	"sunflow/audit"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/domain/catalog"
	"sunflow/idgen"
	"sunflow/persistence"
	"sunflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	approvalIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	GetAllowedActionsFunc = GetAllowedActions
	TransitionFunc        = Transition
)

const pendingApprovalsLimit = 5

type TransitionResultType string

const (
	TransitionApplied = TransitionResultType("APPLIED")
	TransitionPending = TransitionResultType("PENDING")
)

type TransitionResult struct {
	Type TransitionResultType `json:"type"`

	// set when Type is PENDING
	ApprovalRequestID types.ID `json:"approvalRequestId,omitempty"`
	// the re-read entity row, set when Type is APPLIED
	Entity interface{} `json:"entity,omitempty"`
}

type TransitionOptions struct {
	// SkipApproval bypasses the approval gate; set only by the approval
	// subsystem when replaying a decided request. It is the single difference
	// between a first call and a replayed call.
	SkipApproval bool
}

type AllowedActionsResult struct {
	Status  string `json:"status"`
	Version int    `json:"version"`

	IsBlocked     bool   `json:"isBlocked"`
	BlockedReason string `json:"blockedReason"`

	AllowedActions   []string                 `json:"allowedActions"`
	PendingApprovals []domain.ApprovalRequest `json:"pendingApprovals"`
}

// GetAllowedActions answers which transitions the current entity state
// accepts. It performs no writes; transitions whose validator rejects the
// current state are filtered out instead of being offered just to fail later.
func GetAllowedActions(entityType domain.EntityType, id types.ID, s *session.Session) (*AllowedActionsResult, error) {
	store, err := storeOf(entityType)
	if err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	snapshot, err := store.load(db, id)
	if err != nil {
		return nil, err
	}
	if err := checkEntityPerm(snapshot.CompanyID, entityType.ReadCapability(), s); err != nil {
		return nil, err
	}

	result := AllowedActionsResult{
		Status: snapshot.Status, Version: snapshot.Version, AllowedActions: []string{},
	}

	var pending []domain.ApprovalRequest
	if err := db.Where(&domain.ApprovalRequest{
		CompanyID: snapshot.CompanyID, EntityType: entityType, EntityID: id,
		Status: domain.ApprovalStatusPending}).
		Order("create_time DESC").Limit(pendingApprovalsLimit).Find(&pending).Error; err != nil {
		return nil, err
	}
	result.PendingApprovals = pending
	if result.PendingApprovals == nil {
		result.PendingApprovals = []domain.ApprovalRequest{}
	}

	if snapshot.Checklist != nil && snapshot.Checklist.IsBlocked() {
		result.IsBlocked = true
		result.BlockedReason = snapshot.Checklist.BlockedReason
		return &result, nil
	}

	definitions, err := catalog.TransitionsFor(entityType)
	if err != nil {
		return nil, err
	}
	probe := domain.TransitionRequest{EntityType: entityType, EntityID: id,
		CompanyID: snapshot.CompanyID, Version: snapshot.Version}
	for i := range definitions {
		def := &definitions[i]
		if !def.AllowsFrom(snapshot.Status) {
			continue
		}
		probe.Action = def.Action
		if def.Validate != nil && def.Validate(&probe, snapshot) != nil {
			continue
		}
		result.AllowedActions = append(result.AllowedActions, def.Action)
	}

	return &result, nil
}

// Transition validates and applies one named transition, or defers it behind
// an approval request when the definition's approval predicate fires. The
// state write, the audit record and the side effects share one transaction;
// a lost version race aborts all of them.
func Transition(req *domain.TransitionRequest, opt TransitionOptions, s *session.Session) (*TransitionResult, error) {
	store, err := storeOf(req.EntityType)
	if err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	snapshot, err := store.load(db, req.EntityID)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != 0 && req.CompanyID != snapshot.CompanyID {
		return nil, bizerror.ErrNotFound
	}
	req.CompanyID = snapshot.CompanyID

	if err := checkEntityPerm(snapshot.CompanyID, req.EntityType.WriteCapability(), s); err != nil {
		return nil, err
	}
	if snapshot.Checklist != nil && snapshot.Checklist.IsBlocked() {
		return nil, bizerror.ErrChecklistBlocked
	}

	def, err := catalog.FindTransition(req.EntityType, req.Action)
	if err != nil {
		return nil, err
	}
	if !def.AllowsFrom(snapshot.Status) {
		return nil, bizerror.ErrTransitionNotAllowed
	}
	if def.RequiresReason && req.Reason == "" {
		return nil, bizerror.ErrReasonRequired
	}
	if def.Validate != nil {
		if err := def.Validate(req, snapshot); err != nil {
			return nil, err
		}
	}

	if !opt.SkipApproval && def.RequiresApproval != nil && def.RequiresApproval(req, snapshot) {
		return deferBehindApproval(db, req, s)
	}

	now := types.CurrentTimestamp()
	var entity interface{}
	txErr := db.Transaction(func(tx *gorm.DB) error {
		patch := map[string]interface{}{}
		if def.Apply != nil {
			patch = def.Apply(req, snapshot, now)
		}
		toStatus := snapshot.Status
		if def.ToStatus != "" {
			toStatus = def.ToStatus
			patch["status"] = def.ToStatus
		}
		patch["version"] = req.Version + 1

		rowsAffected, err := store.conditionalUpdate(tx, req.EntityID, req.Version, patch)
		if err != nil {
			return err
		}
		if rowsAffected != 1 {
			return bizerror.ErrStaleVersion
		}

		entity, err = store.reload(tx, req.EntityID)
		if err != nil {
			return err
		}

		_, err = audit.CreateAuditRecord(req.CompanyID, req.EntityType, req.EntityID,
			req.Action, audit.CategoryTransitionApplied,
			audit.Changes{FromStatus: snapshot.Status, ToStatus: toStatus, Reason: req.Reason, Detail: req.Payload},
			&s.Identity, now, tx)
		if err != nil {
			return err
		}

		if effect := sideEffects[req.Action]; effect != nil {
			if err := effect(tx, req, snapshot, now, s); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &TransitionResult{Type: TransitionApplied, Entity: entity}, nil
}

// deferBehindApproval records a pending approval request instead of applying
// the transition. An already pending request for the same tuple is returned
// as-is, so a retried call stays idempotent (best effort only, the lookup and
// the insert are not atomic).
func deferBehindApproval(db *gorm.DB, req *domain.TransitionRequest, s *session.Session) (*TransitionResult, error) {
	var existing domain.ApprovalRequest
	err := db.Where(&domain.ApprovalRequest{
		CompanyID: req.CompanyID, EntityType: req.EntityType, EntityID: req.EntityID,
		Action: req.Action, Status: domain.ApprovalStatusPending}).
		First(&existing).Error
	if err == nil {
		return &TransitionResult{Type: TransitionPending, ApprovalRequestID: existing.ID}, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	payload := domain.ApprovalPayload{Reason: req.Reason, Payload: req.Payload, Version: req.Version}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	record := domain.ApprovalRequest{
		ID:        idgen.NextID(approvalIdWorker),
		CompanyID: req.CompanyID,

		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		Payload:    payload,

		RequestedBy:     s.Identity.ID,
		RequestedByName: s.Identity.Name,
		Status:          domain.ApprovalStatusPending,
		CreateTime:      now,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		_, err := audit.CreateAuditRecord(req.CompanyID, req.EntityType, req.EntityID,
			req.Action, audit.CategoryApprovalRequested,
			audit.Changes{FromStatus: "", ToStatus: "", Reason: req.Reason, Detail: req.Payload},
			&s.Identity, now, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return &TransitionResult{Type: TransitionPending, ApprovalRequestID: record.ID}, nil
}

func checkEntityPerm(companyID types.ID, capability string, s *session.Session) error {
	if s == nil {
		return bizerror.ErrForbidden
	}
	if companyID == 0 {
		if !s.Perms.IsSystemAdmin() {
			return bizerror.ErrForbidden
		}
		return nil
	}
	if !s.Perms.HasCompanyPerm(companyID, capability) && !s.Perms.IsCompanyAdmin(companyID) {
		return bizerror.ErrForbidden
	}
	return nil
}
