package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sunflow/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

var statusMappings = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden", "access forbidden"},

	{ErrUnknownEntityType, http.StatusBadRequest, "workflow.unknown_entity_type", "unknown entity type"},
	{ErrUnknownAction, http.StatusBadRequest, "workflow.unknown_action", "unknown action"},
	{ErrTransitionNotAllowed, http.StatusBadRequest, "workflow.transition_not_allowed", "transition not allowed from current status"},
	{ErrReasonRequired, http.StatusBadRequest, "workflow.reason_required", "reason is required"},
	{ErrContractNotSigned, http.StatusBadRequest, "workflow.contract_not_signed", "contract has no signature timestamp"},
	{ErrParentContractNotActive, http.StatusBadRequest, "workflow.parent_contract_not_active", "parent contract is not active"},
	{ErrChecklistItemsNotDone, http.StatusBadRequest, "workflow.checklist_items_not_done", "checklist has open required items"},
	{ErrChecklistTemplateMissing, http.StatusBadRequest, "workflow.checklist_template_missing", "no default checklist template for company"},
	{ErrApprovalPayloadInvalid, http.StatusBadRequest, "approval.payload_invalid", "approval payload is invalid"},
	{ErrApprovalDecisionInvalid, http.StatusBadRequest, "approval.decision_invalid", "approval decision is invalid"},

	{ErrStaleVersion, http.StatusConflict, "workflow.stale_version", "version mismatch"},
	{ErrChecklistBlocked, http.StatusConflict, "workflow.checklist_blocked", "checklist is blocked"},
	{ErrApprovalNotPending, http.StatusConflict, "approval.not_pending", "approval request is not pending"},
	{ErrApprovalReplayFailed, http.StatusConflict, "approval.replay_failed", "approved transition was not applied"},
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax Error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, m := range statusMappings {
		if errors.Is(genericErr, m.err) {
			c.JSON(m.status, &common.ErrorBody{Code: m.code, Message: m.message})
			c.Abort()
			return
		}
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
