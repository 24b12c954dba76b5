package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// asInt64 coerces an identifier from a decoded JSON body or a query string.
// Clients send IDs as numbers or numeric strings; anything else is a caller
// error reported with the offending field name. An empty string means the
// field was never sent (missing query params arrive as ""), same as nil.
func asInt64(v any, name string) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("%s is required", name)
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int64(t), nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, fmt.Errorf("%s is required", name)
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%s must be an integer", name)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
