package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNonNegativeInt(t *testing.T) {
	val, httpErr := ParseNonNegativeInt("number", "")
	assert.Nil(t, val)
	assert.Nil(t, httpErr)

	val, httpErr = ParseNonNegativeInt("number", "7")
	require.Nil(t, httpErr)
	assert.Equal(t, 7, *val)

	val, httpErr = ParseNonNegativeInt("offset", "0")
	require.Nil(t, httpErr)
	assert.Equal(t, 0, *val)

	for _, raw := range []string{"abc", "-1", "1.5", "3x"} {
		_, httpErr = ParseNonNegativeInt("number", raw)
		require.NotNil(t, httpErr, raw)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "number must be a non-negative integer", httpErr.AdditionalInformation)
	}
}

func TestXSSSanitize(t *testing.T) {
	assert.Equal(t, "hi ", XSSSanitize(`hi <script>alert("x")</script>`))
	assert.Equal(t, "Tom &amp; Jerry", XSSSanitize("Tom & Jerry"))
	assert.Equal(t, "", XSSSanitize("<script>alert(1)</script>"))
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", XSSSanitize("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "<b>bold</b>", XSSSanitize("<b>bold</b>"))
}

func TestAvatar(t *testing.T) {
	assert.Equal(t, "https://avatars.dicebear.com/api/bottts/a%2Fb.svg?size=64", Avatar("a/b"))
}

func serve(handler Handler, opts *HandlerOpts) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", HandlerWrapper(handler, opts))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	for k, v := range CORSHeaders {
		assert.Equal(t, v, w.Header().Get(k), k)
	}
}

func TestHandlerWrapperSuccess(t *testing.T) {
	w := serve(func(c *gin.Context) (interface{}, *HTTPError) {
		return gin.H{"ok": true}, nil
	}, &HandlerOpts{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assertCORS(t, w)
}

func TestHandlerWrapperResponseOverrides(t *testing.T) {
	w := serve(func(c *gin.Context) (interface{}, *HTTPError) {
		return &Response{Body: []int{1}, Headers: map[string]string{"Set-Cookie": "a=b"}}, nil
	}, &HandlerOpts{SuccessStatus: http.StatusCreated})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a=b", w.Header().Get("Set-Cookie"))
	assert.JSONEq(t, `[1]`, w.Body.String())
	assertCORS(t, w)
}

func TestHandlerWrapperError(t *testing.T) {
	w := serve(func(c *gin.Context) (interface{}, *HTTPError) {
		return nil, &HTTPError{Status: http.StatusTeapot, Message: "Teapot", AdditionalInformation: "short and stout"}
	}, nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
	var envelope map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, map[string]string{"message": "Teapot", "additionalInformation": "short and stout"}, envelope)
	assertCORS(t, w)
}
