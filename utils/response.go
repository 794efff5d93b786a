package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the uniform envelope returned by every endpoint. The
// statusCode field duplicates the HTTP status so front-end code that
// only looks at the body can still branch on it.
type APIResponse struct {
	IsError      bool   `json:"isError"`
	Message      string `json:"message,omitempty"`
	Data         any    `json:"data,omitempty"`
	ResponseData any    `json:"responseData,omitempty"`
	StatusCode   int    `json:"statusCode"`
}

// SuccessMessage responds 200 with a message and no payload.
func SuccessMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, APIResponse{
		IsError:    false,
		Message:    message,
		StatusCode: http.StatusOK,
	})
}

// SuccessData responds 200 with a data payload.
func SuccessData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{
		IsError:    false,
		Data:       data,
		StatusCode: http.StatusOK,
	})
}

// SuccessResponseData responds 200 with a message and a responseData
// payload, the shape the merch catalog endpoint uses.
func SuccessResponseData(c *gin.Context, message string, responseData any) {
	c.JSON(http.StatusOK, APIResponse{
		IsError:      false,
		Message:      message,
		ResponseData: responseData,
		StatusCode:   http.StatusOK,
	})
}

// ErrorResponse responds with the error envelope for the given status.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		IsError:    true,
		Message:    message,
		StatusCode: statusCode,
	})
}
