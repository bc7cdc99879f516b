package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")

	// validation failures of a transition attempt
	ErrUnknownEntityType        = errors.New("unknown entity type")
	ErrUnknownAction            = errors.New("unknown action")
	ErrTransitionNotAllowed     = errors.New("transition not allowed from current status")
	ErrReasonRequired           = errors.New("reason is required")
	ErrContractNotSigned        = errors.New("contract has no signature timestamp")
	ErrParentContractNotActive  = errors.New("parent contract is not active")
	ErrChecklistItemsNotDone    = errors.New("checklist has open required items")
	ErrChecklistTemplateMissing = errors.New("no default checklist template for company")
	ErrApprovalPayloadInvalid   = errors.New("approval payload is invalid")
	ErrApprovalDecisionInvalid  = errors.New("approval decision is invalid")

	// conflict class failures
	ErrStaleVersion         = errors.New("version mismatch")
	ErrChecklistBlocked     = errors.New("checklist is blocked")
	ErrApprovalNotPending   = errors.New("approval request is not pending")
	ErrApprovalReplayFailed = errors.New("approved transition was not applied")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
