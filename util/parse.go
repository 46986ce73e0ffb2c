package util

import (
	"net/http"
	"strconv"
)

// ParseNonNegativeInt parses an optional query value. Absent (empty) yields nil; anything that is not a
// base-10 integer >= 0 is a client error rather than being coerced.
func ParseNonNegativeInt(name, raw string) (*int, *HTTPError) {
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return nil, &HTTPError{
			Status:                http.StatusBadRequest,
			Message:               "Invalid Query Parameter",
			AdditionalInformation: name + " must be a non-negative integer",
		}
	}
	return &val, nil
}
