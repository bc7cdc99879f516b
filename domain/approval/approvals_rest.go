package approval

import (
	"errors"
	"net/http"
	"sunflow/bizerror"
	"sunflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathApprovalRequests = "/v1/approval-requests"

func RegisterApprovalRequestsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathApprovalRequests, middleWares...)
	g.GET("", handleListApprovalRequests)
	g.GET(":id", handleDetailApprovalRequest)
	g.POST(":id/decision", handleDecideApprovalRequest)
}

func handleListApprovalRequests(c *gin.Context) {
	query := ApprovalRequestQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := ListApprovalRequestsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func parseApprovalRequestId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleDetailApprovalRequest(c *gin.Context) {
	record, err := DetailApprovalRequestFunc(parseApprovalRequestId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDecideApprovalRequest(c *gin.Context) {
	id := parseApprovalRequestId(c)
	decision := ApprovalDecisionCreation{}
	if err := c.ShouldBindBodyWith(&decision, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := DecideApprovalRequestFunc(id, decision, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
