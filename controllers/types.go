package controllers

import (
	"log"
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/types"
	"github.com/gin-gonic/gin"
)

type StandardResponse struct {
	Success    bool                  `json:"success"`
	Data       interface{}           `json:"data,omitempty"`
	Pagination *types.PaginationMeta `json:"pagination,omitempty"`
	Message    string                `json:"message,omitempty"`
}

var statusByKind = map[services.Kind]int{
	services.KindValidation:      http.StatusBadRequest,
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindConflict:        http.StatusConflict,
}

// respondError writes a classified failure with its message. Anything else
// is logged and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	status, ok := statusByKind[services.KindOf(err)]
	if !ok {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, StandardResponse{
			Success: false,
			Message: "Internal server error",
		})
		return
	}
	c.JSON(status, StandardResponse{Success: false, Message: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: message})
}
