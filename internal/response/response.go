package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope of every API response.
type Response struct {
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody describes why a request failed.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, envelope(c, data, nil))
}

// Fail sends an error response with the default message for code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, envelope(c, nil, errorBody(code, nil)))
}

// FailWithFields sends an error response with per-field details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, envelope(c, nil, errorBody(code, fields)))
}

// FailWithData sends an error response that still carries a payload, for
// operations that partly succeeded.
func FailWithData(c *gin.Context, statusCode int, code ErrCode, data interface{}) {
	c.JSON(statusCode, envelope(c, data, errorBody(code, nil)))
}

// AbortFail stops the middleware chain with an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, envelope(c, nil, errorBody(code, nil)))
}

func errorBody(code ErrCode, fields map[string]string) *ErrorBody {
	return &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}
}

func envelope(c *gin.Context, data interface{}, body *ErrorBody) Response {
	id := RequestID(c)
	if id == "" {
		id = uuid.NewString()
	}
	return Response{
		Data:  data,
		Error: body,
		Metadata: Metadata{
			RequestID: id,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}
