package httpx

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/onlinestore/onlinestore/internal/shared"
)

// PageParams reads the limit and offset query parameters. Missing values fall
// back to defaults; non-numeric values wrap shared.ErrValidation.
func PageParams(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if limit, err = intParam(q.Get("limit")); err != nil {
		return 0, 0, fmt.Errorf("%w: limit: %v", shared.ErrValidation, err)
	}
	if offset, err = intParam(q.Get("offset")); err != nil {
		return 0, 0, fmt.Errorf("%w: offset: %v", shared.ErrValidation, err)
	}
	limit, offset = shared.ClampPage(limit, offset)
	return limit, offset, nil
}

// Int64Param parses a positive integer path or query value.
func Int64Param(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", shared.ErrValidation, raw)
	}
	return id, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
