package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library/domain"
	"library/log"
	"library/repository"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

func respond(c *gin.Context, code int, data gin.H) {
	c.JSON(code, gin.H{"status": statusSuccess, "data": data})
}

func respondList(c *gin.Context, key string, items any, count int) {
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"results": count,
		"data":    gin.H{key: items},
	})
}

// pathID reads a positive integer path parameter. label names the resource in
// the error message, e.g. "User".
func pathID(c *gin.Context, param, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError("Invalid path parameters: %s ID must be a positive integer", label)
	}
	return uint(id), nil
}

func invalidBody(err error) error {
	return domain.NewValidationError("Invalid request data: %s", err.Error())
}

// renderErrors writes the envelope for the last error a handler attached with
// c.Error, unless the handler already wrote a response.
func renderErrors(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		code, message := classify(err)
		body := gin.H{"status": statusFail, "message": message}
		if code >= http.StatusInternalServerError {
			log.GetLogger(c.Request.Context()).WithError(err).Error("request failed")
			body["status"] = statusError
			if development {
				body["error"] = err.Error()
			}
		}
		c.JSON(code, body)
	}
}

func classify(err error) (int, string) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		switch derr.Kind {
		case domain.KindNotFound:
			return http.StatusNotFound, derr.Error()
		case domain.KindValidation, domain.KindDuplicate, domain.KindConflict:
			return http.StatusBadRequest, derr.Error()
		}
	}
	switch {
	case repository.IsUniqueViolation(err):
		return http.StatusBadRequest, "A record with these details already exists."
	case repository.IsForeignKeyViolation(err):
		return http.StatusBadRequest, "Referenced resource does not exist."
	}
	return http.StatusInternalServerError, "Something went wrong"
}
