package engine_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/domain/engine"
	"sunflow/session"
	"sunflow/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestQueryAllowedActionsAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	engine.RegisterWorkflowRestAPI(router)

	t.Run("should be able to validate parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, engine.PathWorkflow+"/ORDER/10/allowed-actions", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"invalid entity type 'ORDER'", "data":null}`))

		req = httptest.NewRequest(http.MethodGet, engine.PathWorkflow+"/SALE/abc/allowed-actions", nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"invalid id 'abc'", "data":null}`))
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		engine.GetAllowedActionsFunc = func(entityType domain.EntityType, id types.ID, s *session.Session) (
			*engine.AllowedActionsResult, error) {
			return nil, bizerror.ErrForbidden
		}
		req := httptest.NewRequest(http.MethodGet, engine.PathWorkflow+"/SALE/10/allowed-actions", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden", "message":"access forbidden", "data":null}`))
	})

	t.Run("should be able to query allowed actions successfully", func(t *testing.T) {
		var queriedType domain.EntityType
		var queriedId types.ID
		engine.GetAllowedActionsFunc = func(entityType domain.EntityType, id types.ID, s *session.Session) (
			*engine.AllowedActionsResult, error) {
			queriedType, queriedId = entityType, id
			return &engine.AllowedActionsResult{Status: "ACTIVE", Version: 3,
				AllowedActions:   []string{domain.ActionContractSuspend, domain.ActionContractComplete},
				PendingApprovals: []domain.ApprovalRequest{}}, nil
		}
		req := httptest.NewRequest(http.MethodGet, engine.PathWorkflow+"/CONTRACT/20/allowed-actions", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"status":"ACTIVE", "version":3, "isBlocked":false, "blockedReason":"",
			"allowedActions":["CONTRACT_SUSPEND","CONTRACT_COMPLETE"], "pendingApprovals":[]}`))
		Expect(queriedType).To(Equal(domain.EntityTypeContract))
		Expect(queriedId).To(Equal(types.ID(20)))
	})
}

func TestCreateTransitionAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	engine.RegisterWorkflowRestAPI(router)

	t.Run("should be able to validate parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, engine.PathWorkflow+"/SALE/10/transition", strings.NewReader("{}"))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
		"message": "Key: 'TransitionCreation.Action' Error:Field validation for 'Action' failed on the 'required' tag\n` +
			`Key: 'TransitionCreation.Version' Error:Field validation for 'Version' failed on the 'required' tag",
		"data":null}`))

		req = httptest.NewRequest(http.MethodPost, engine.PathWorkflow+"/SALE/10/transition", nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"EOF", "data":null}`))

		req = httptest.NewRequest(http.MethodPost, engine.PathWorkflow+"/SALE/10/transition", strings.NewReader(" xx "))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"invalid character 'x' looking for beginning of value", "data":null}`))
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		engine.TransitionFunc = func(req *domain.TransitionRequest, opt engine.TransitionOptions,
			s *session.Session) (*engine.TransitionResult, error) {
			return nil, bizerror.ErrStaleVersion
		}
		reqBody := `{"action":"SALE_MARK_WON", "version":1}`
		req := httptest.NewRequest(http.MethodPost, engine.PathWorkflow+"/SALE/10/transition", strings.NewReader(reqBody))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"workflow.stale_version", "message":"version mismatch", "data":null}`))
	})

	t.Run("should answer 200 for an applied transition", func(t *testing.T) {
		var captured domain.TransitionRequest
		engine.TransitionFunc = func(req *domain.TransitionRequest, opt engine.TransitionOptions,
			s *session.Session) (*engine.TransitionResult, error) {
			captured = *req
			return &engine.TransitionResult{Type: engine.TransitionApplied,
				Entity: map[string]string{"id": "10", "status": "LOST"}}, nil
		}
		reqBody := `{"action":"SALE_MARK_LOST", "reason":"competitor won", "version":2, "payload":{"note":"price"}}`
		req := httptest.NewRequest(http.MethodPost, engine.PathWorkflow+"/SALE/10/transition", strings.NewReader(reqBody))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"type":"APPLIED", "entity":{"id":"10", "status":"LOST"}}`))

		Expect(captured).To(Equal(domain.TransitionRequest{
			EntityType: domain.EntityTypeSale, EntityID: 10, Action: domain.ActionSaleMarkLost,
			Reason: "competitor won", Payload: domain.TransitionPayload{"note": "price"}, Version: 2}))
	})

	t.Run("should answer 202 for a deferred transition", func(t *testing.T) {
		engine.TransitionFunc = func(req *domain.TransitionRequest, opt engine.TransitionOptions,
			s *session.Session) (*engine.TransitionResult, error) {
			return &engine.TransitionResult{Type: engine.TransitionPending, ApprovalRequestID: 123}, nil
		}
		reqBody := `{"action":"CONTRACT_CANCEL", "reason":"cliente pediu", "version":1}`
		req := httptest.NewRequest(http.MethodPost, engine.PathWorkflow+"/CONTRACT/20/transition", strings.NewReader(reqBody))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusAccepted))
		Expect(body).To(MatchJSON(`{"type":"PENDING", "approvalRequestId":"123"}`))
	})
}
