package handler

import (
	"errors"
	"net/http"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: message, Data: data})
}

// respondError maps the error taxonomy onto the response envelope.
// Not-found is success:false with null data at 200, matching what
// existing consumers expect; only validation and storage failures get
// error status codes.
func respondError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Message: validation.Error()})
		return
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusOK, dto.Envelope{Success: false, Message: notFound.Error(), Data: nil})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.Envelope{Success: false, Message: "internal error"})
}
