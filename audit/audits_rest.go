package audit

import (
	"net/http"
	"sunflow/bizerror"
	"sunflow/session"

	"github.com/gin-gonic/gin"
)

var PathAuditRecords = "/v1/audit-records"

func RegisterAuditRecordsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAuditRecords, middleWares...)
	g.GET("", handleQueryAuditRecords)
}

func handleQueryAuditRecords(c *gin.Context) {
	query := AuditRecordQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryAuditRecordsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
