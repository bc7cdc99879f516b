package engine

import (
	"errors"
	"net/http"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathWorkflow = "/v1/workflow"

func RegisterWorkflowRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkflow, middleWares...)
	g.GET(":entityType/:entityId/allowed-actions", handleQueryAllowedActions)
	g.POST(":entityType/:entityId/transition", handleCreateTransition)
}

type TransitionCreation struct {
	Action  string                   `json:"action" binding:"required"`
	Reason  string                   `json:"reason"`
	Payload domain.TransitionPayload `json:"payload"`
	Version int                      `json:"version" binding:"required"`
}

func parseEntityPath(c *gin.Context) (domain.EntityType, types.ID) {
	entityType, err := domain.ParseEntityType(c.Param("entityType"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid entity type '" + c.Param("entityType") + "'")})
	}
	parsedId, err := types.ParseID(c.Param("entityId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("entityId") + "'")})
	}
	return entityType, parsedId
}

func handleQueryAllowedActions(c *gin.Context) {
	entityType, entityId := parseEntityPath(c)
	result, err := GetAllowedActionsFunc(entityType, entityId, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleCreateTransition(c *gin.Context) {
	entityType, entityId := parseEntityPath(c)
	creation := TransitionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	req := domain.TransitionRequest{
		EntityType: entityType,
		EntityID:   entityId,
		Action:     creation.Action,
		Reason:     creation.Reason,
		Payload:    creation.Payload,
		Version:    creation.Version,
	}
	result, err := TransitionFunc(&req, TransitionOptions{}, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	if result.Type == TransitionPending {
		c.JSON(http.StatusAccepted, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
