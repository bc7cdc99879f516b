package approval_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/domain/approval"
	"sunflow/session"
	"sunflow/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestListApprovalRequestsAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	approval.RegisterApprovalRequestsRestAPI(router)

	t.Run("should be able to handle error", func(t *testing.T) {
		approval.ListApprovalRequestsFunc = func(query approval.ApprovalRequestQuery, s *session.Session) (
			[]domain.ApprovalRequest, error) {
			return nil, bizerror.ErrForbidden
		}
		req := httptest.NewRequest(http.MethodGet, approval.PathApprovalRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden", "message":"access forbidden", "data":null}`))
	})

	t.Run("should be able to list approval requests successfully", func(t *testing.T) {
		demoTime := types.TimestampOfDate(2026, 3, 1, 9, 0, 0, 0, time.Now().Location())
		timeBytes, err := demoTime.Time().MarshalJSON()
		Expect(err).To(BeNil())
		timeString := strings.Trim(string(timeBytes), `"`)

		var queried approval.ApprovalRequestQuery
		approval.ListApprovalRequestsFunc = func(query approval.ApprovalRequestQuery, s *session.Session) (
			[]domain.ApprovalRequest, error) {
			queried = query
			return []domain.ApprovalRequest{{ID: 123, CompanyID: 100,
				EntityType: domain.EntityTypeContract, EntityID: 20, Action: domain.ActionContractCancel,
				Payload:     domain.ApprovalPayload{Reason: "cliente pediu", Version: 1},
				RequestedBy: 10, RequestedByName: "user 10",
				Status:      domain.ApprovalStatusPending, CreateTime: demoTime}}, nil
		}
		req := httptest.NewRequest(http.MethodGet, approval.PathApprovalRequests+"?status=PENDING", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[{"id":"123", "companyId":"100",
			"entityType":"CONTRACT", "entityId":"20", "action":"CONTRACT_CANCEL",
			"payload":{"reason":"cliente pediu", "payload":null, "version":1},
			"requestedBy":"10", "requestedByName":"user 10", "status":"PENDING",
			"decidedBy":"0", "decidedByName":"", "decidedAt":null, "decisionNote":"",
			"createTime":"` + timeString + `"}]`))
		Expect(queried).To(Equal(approval.ApprovalRequestQuery{Status: domain.ApprovalStatusPending}))
	})
}

func TestDecideApprovalRequestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	approval.RegisterApprovalRequestsRestAPI(router)

	t.Run("should be able to validate parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, approval.PathApprovalRequests+"/abc/decision", strings.NewReader("{}"))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"invalid id 'abc'", "data":null}`))

		req = httptest.NewRequest(http.MethodPost, approval.PathApprovalRequests+"/123/decision", strings.NewReader("{}"))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
		"message": "Key: 'ApprovalDecisionCreation.Decision' Error:Field validation for 'Decision' failed on the 'required' tag",
		"data":null}`))

		req = httptest.NewRequest(http.MethodPost, approval.PathApprovalRequests+"/123/decision", nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"EOF", "data":null}`))
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		approval.DecideApprovalRequestFunc = func(id types.ID, decision approval.ApprovalDecisionCreation,
			s *session.Session) (*domain.ApprovalRequest, error) {
			return nil, bizerror.ErrApprovalNotPending
		}
		reqBody := `{"decision":"APPROVE"}`
		req := httptest.NewRequest(http.MethodPost, approval.PathApprovalRequests+"/123/decision", strings.NewReader(reqBody))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"approval.not_pending", "message":"approval request is not pending", "data":null}`))
	})

	t.Run("should be able to decide successfully", func(t *testing.T) {
		var decidedId types.ID
		var decidedWith approval.ApprovalDecisionCreation
		approval.DecideApprovalRequestFunc = func(id types.ID, decision approval.ApprovalDecisionCreation,
			s *session.Session) (*domain.ApprovalRequest, error) {
			decidedId, decidedWith = id, decision
			return &domain.ApprovalRequest{ID: id, Status: domain.ApprovalStatusRejected}, nil
		}
		reqBody := `{"decision":"REJECT", "note":"too early"}`
		req := httptest.NewRequest(http.MethodPost, approval.PathApprovalRequests+"/123/decision", strings.NewReader(reqBody))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"id":"123", "companyId":"0", "entityType":"", "entityId":"0", "action":"",
			"payload":{"reason":"", "payload":null, "version":0},
			"requestedBy":"0", "requestedByName":"", "status":"REJECTED",
			"decidedBy":"0", "decidedByName":"", "decidedAt":null, "decisionNote":"", "createTime":null}`))
		Expect(decidedId).To(Equal(types.ID(123)))
		Expect(decidedWith).To(Equal(approval.ApprovalDecisionCreation{
			Decision: domain.ApprovalDecisionReject, Note: "too early"}))
	})
}
