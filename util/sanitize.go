package util

import (
	"github.com/microcosm-cc/bluemonday"
)

var XSSPolicy = bluemonday.UGCPolicy()

// XSSSanitize strips unsafe HTML. The output stays entity-escaped so it can never decode back into markup.
func XSSSanitize(val string) string {
	return XSSPolicy.Sanitize(val)
}
