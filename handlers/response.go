package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/sirupsen/logrus"
)

func statusFor(kind utils.ErrorKind) int {
	switch kind {
	case utils.KindNotFound:
		return http.StatusNotFound
	case utils.KindInvalidInput, utils.KindEmptyItemList, utils.KindInvalidRange, utils.KindInvalidDateFormat:
		return http.StatusUnprocessableEntity
	case utils.KindNegativeResultingStock:
		return http.StatusBadRequest
	case utils.KindConflict:
		return http.StatusConflict
	case utils.KindUnauthorized:
		return http.StatusUnauthorized
	case utils.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status of its kind. Unexpected errors are logged and hidden.
func respondError(c *gin.Context, module string, err error) {
	status := statusFor(utils.KindOf(err))
	if status == http.StatusInternalServerError {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), module, c.HandlerName(), c.Request.Method+" "+c.FullPath(), logrus.Fields{"correlation_id": cid}, err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
}

// bind decodes the JSON body; on failure the response is already written.
func bind(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		respondValidation(c, err)
		return false
	}
	return true
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func pagination(c *gin.Context) (skip int, limit int, ok bool) {
	if skip, ok = queryInt(c, "skip", 0); !ok {
		return
	}
	if skip < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid skip"})
		return 0, 0, false
	}
	if limit, ok = queryInt(c, "limit", config.SearchLimit); !ok {
		return
	}
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}
	return skip, limit, true
}

// queryDate parses an optional report date. Bad formats are answered with 400.
func queryDate(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return nil, true
	}
	parse := utils.ParseFlexibleDate
	if endOfDay {
		parse = utils.ParseFlexibleEndDate
	}
	t, err := parse(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &t, true
}

// queryRange reads start_date and end_date, both required.
func queryRange(c *gin.Context) (start time.Time, end time.Time, ok bool) {
	s, ok := queryDate(c, "start_date", false)
	if !ok {
		return
	}
	e, ok := queryDate(c, "end_date", true)
	if !ok {
		return
	}
	if s == nil || e == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "start_date and end_date are required"})
		return start, end, false
	}
	if s.After(*e) {
		respondError(c, "Reports", utils.ErrInvalidRange)
		return start, end, false
	}
	return *s, *e, true
}
