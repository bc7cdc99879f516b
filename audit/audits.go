package audit

import (
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/idgen"
	"sunflow/persistence"
	"sunflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	auditIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AuditPersistCreateFunc = AuditPersistCreate
	QueryAuditRecordsFunc  = QueryAuditRecords
)

type Changes struct {
	FromStatus string
	ToStatus   string
	Reason     string
	Detail     domain.TransitionPayload
}

// CreateAuditRecord appends one audit row inside the caller's transaction, so
// the record only survives if the action it describes was committed.
func CreateAuditRecord(companyID types.ID, entityType domain.EntityType, entityID types.ID,
	action string, category AuditCategory, changes Changes,
	identity *session.Identity, timestamp types.Timestamp, tx *gorm.DB) (*AuditRecord, error) {

	record := AuditRecord{
		ID:        idgen.NextID(auditIdWorker),
		CompanyID: companyID,

		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Category:   category,

		FromStatus: changes.FromStatus,
		ToStatus:   changes.ToStatus,
		Reason:     changes.Reason,
		Detail:     changes.Detail,

		ActorID:   identity.ID,
		ActorName: identity.Name,

		Timestamp: timestamp,
	}
	if err := AuditPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

func AuditPersistCreate(record *AuditRecord, tx *gorm.DB) error {
	return tx.Create(record).Error
}

type AuditRecordQuery struct {
	EntityType domain.EntityType `json:"entityType" form:"entityType" binding:"required"`
	EntityID   types.ID          `json:"entityId" form:"entityId" binding:"required"`
}

func QueryAuditRecords(query AuditRecordQuery, s *session.Session) ([]AuditRecord, error) {
	entityType, err := domain.ParseEntityType(string(query.EntityType))
	if err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []AuditRecord
	if err := db.Where(&AuditRecord{EntityType: entityType, EntityID: query.EntityID}).
		Order("timestamp DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []AuditRecord{}, nil
	}

	companyID := records[0].CompanyID
	if companyID == 0 {
		if !s.Perms.IsSystemAdmin() {
			return nil, bizerror.ErrForbidden
		}
	} else if !s.Perms.HasCompanyPerm(companyID, entityType.ReadCapability()) &&
		!s.Perms.IsCompanyAdmin(companyID) {
		return nil, bizerror.ErrForbidden
	}

	return records, nil
}
