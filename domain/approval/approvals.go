package approval

import (
	"sunflow/audit"
	"sunflow/authority"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/domain/engine"
	"sunflow/persistence"
	"sunflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ListApprovalRequestsFunc  = ListApprovalRequests
	DetailApprovalRequestFunc = DetailApprovalRequest
	DecideApprovalRequestFunc = DecideApprovalRequest
)

type ApprovalRequestQuery struct {
	Status domain.ApprovalStatus `json:"status" form:"status"`
}

type ApprovalDecisionCreation struct {
	Decision domain.ApprovalDecision `json:"decision" binding:"required"`
	Note     string                  `json:"note"`
}

// canAccessApprovals gates every approval operation: any of the write
// capabilities, or the company admin role.
func canAccessApprovals(companyID types.ID, s *session.Session) bool {
	if s == nil {
		return false
	}
	if companyID == 0 {
		return s.Perms.IsSystemAdmin()
	}
	return s.Perms.HasAnyCompanyPerm(companyID, authority.CapContractWrite, authority.CapWorkWrite) ||
		s.Perms.IsCompanyAdmin(companyID)
}

func ListApprovalRequests(query ApprovalRequestQuery, s *session.Session) ([]domain.ApprovalRequest, error) {
	var accessibleCompanies []types.ID
	for _, companyID := range s.Perms.VisibleCompanies() {
		if canAccessApprovals(companyID, s) {
			accessibleCompanies = append(accessibleCompanies, companyID)
		}
	}
	if len(accessibleCompanies) == 0 {
		return []domain.ApprovalRequest{}, nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Where("company_id in (?)", accessibleCompanies)
	if query.Status != "" {
		q = q.Where(&domain.ApprovalRequest{Status: query.Status})
	}

	var records []domain.ApprovalRequest
	if err := q.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailApprovalRequest(id types.ID, s *session.Session) (*domain.ApprovalRequest, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var record domain.ApprovalRequest
	if err := db.Where(&domain.ApprovalRequest{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	if !canAccessApprovals(record.CompanyID, s) {
		return nil, bizerror.ErrForbidden
	}
	return &record, nil
}

// DecideApprovalRequest closes a pending request. A rejection only marks the
// request, an approval first replays the captured transition through the
// workflow engine with the approval gate bypassed; the request is marked
// APPROVED only when that replay came back APPLIED.
func DecideApprovalRequest(id types.ID, decision ApprovalDecisionCreation, s *session.Session) (*domain.ApprovalRequest, error) {
	if decision.Decision != domain.ApprovalDecisionApprove && decision.Decision != domain.ApprovalDecisionReject {
		return nil, bizerror.ErrApprovalDecisionInvalid
	}

	record, err := DetailApprovalRequest(id, s)
	if err != nil {
		return nil, err
	}
	if record.Status != domain.ApprovalStatusPending {
		return nil, bizerror.ErrApprovalNotPending
	}

	if decision.Decision == domain.ApprovalDecisionApprove {
		if err := record.Payload.Validate(); err != nil {
			return nil, err
		}
		replay := domain.TransitionRequest{
			EntityType: record.EntityType,
			EntityID:   record.EntityID,
			Action:     record.Action,
			Reason:     record.Payload.Reason,
			Payload:    record.Payload.Payload,
			Version:    record.Payload.Version,
			CompanyID:  record.CompanyID,
		}
		result, err := engine.TransitionFunc(&replay, engine.TransitionOptions{SkipApproval: true}, s)
		if err != nil {
			return nil, err
		}
		if result.Type != engine.TransitionApplied {
			return nil, bizerror.ErrApprovalReplayFailed
		}
	}

	toStatus := domain.ApprovalStatusRejected
	auditCategory := audit.CategoryApprovalRejected
	if decision.Decision == domain.ApprovalDecisionApprove {
		toStatus = domain.ApprovalStatusApproved
		auditCategory = audit.CategoryApprovalApproved
	}

	now := types.CurrentTimestamp()
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		// guard on PENDING so a concurrent decision loses cleanly
		ret := tx.Model(&domain.ApprovalRequest{}).
			Where("id = ? AND status = ?", record.ID, domain.ApprovalStatusPending).
			Updates(map[string]interface{}{
				"status":          toStatus,
				"decided_by":      s.Identity.ID,
				"decided_by_name": s.Identity.Name,
				"decided_at":      now,
				"decision_note":   decision.Note,
			})
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected != 1 {
			return bizerror.ErrApprovalNotPending
		}

		_, err := audit.CreateAuditRecord(record.CompanyID, record.EntityType, record.EntityID,
			record.Action, auditCategory,
			audit.Changes{Reason: decision.Note, Detail: record.Payload.Payload},
			&s.Identity, now, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := db.Where(&domain.ApprovalRequest{ID: record.ID}).First(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
