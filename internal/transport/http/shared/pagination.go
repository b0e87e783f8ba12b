package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset query params, falling back to
// defaultLimit and clamping the limit to maxLimit. Malformed or negative
// values keep the defaults.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Limit: defaultLimit}
	if v, ok := queryInt(r, "limit"); ok && v > 0 {
		p.Limit = v
	}
	if v, ok := queryInt(r, "offset"); ok && v >= 0 {
		p.Offset = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
