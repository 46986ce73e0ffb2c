package util

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Status                int
	Message               string
	AdditionalInformation string
}

func (he *HTTPError) Error() string {
	return fmt.Sprintf("%v (statusCode=%v)", he.Message, he.Status)
}

var (
	InternalHTTPErr = HTTPError{
		Message:               "Internal Server Error",
		AdditionalInformation: "The request could not be completed",
		Status:                http.StatusInternalServerError,
	}
	NotFoundHTTPErr = HTTPError{
		Message:               "URL Not Found",
		AdditionalInformation: "Oops! You're looking for something that does not exist!",
		Status:                http.StatusNotFound,
	}
)

// CORSHeaders go on every response, success or error.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "*",
	"Access-Control-Allow-Headers": "*",
}

type errorEnvelope struct {
	Message               string `json:"message"`
	AdditionalInformation string `json:"additionalInformation,omitempty"`
}

// Response lets a handler pick a non-default status or add headers to a success.
type Response struct {
	Status  int
	Body    interface{}
	Headers map[string]string
}

func setHeaders(c *gin.Context, headers map[string]string) {
	for k, v := range headers {
		c.Header(k, v)
	}
}

func RespondSuccess(c *gin.Context, body interface{}, status int, headers map[string]string) {
	setHeaders(c, CORSHeaders)
	setHeaders(c, headers)
	c.JSON(status, body)
}

/*
	RespondError writes the error envelope.
	break the route after calling this function
*/
func RespondError(c *gin.Context, err *HTTPError) {
	setHeaders(c, CORSHeaders)
	c.AbortWithStatusJSON(err.Status, errorEnvelope{
		Message:               err.Message,
		AdditionalInformation: err.AdditionalInformation,
	})
}

type HandlerOpts struct {
	SuccessStatus int // defaults to 200
}

type Handler func(c *gin.Context) (interface{}, *HTTPError)

func HandlerWrapper(handler Handler, opts *HandlerOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, httpErr := handler(c)
		if httpErr != nil {
			RespondError(c, httpErr)
			return
		}
		status := http.StatusOK
		if opts != nil && opts.SuccessStatus != 0 {
			status = opts.SuccessStatus
		}
		if resp, ok := res.(*Response); ok {
			if resp.Status != 0 {
				status = resp.Status
			}
			RespondSuccess(c, resp.Body, status, resp.Headers)
			return
		}
		RespondSuccess(c, res, status, nil)
	}
}
