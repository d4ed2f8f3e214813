package pagination

import (
	"errors"
	"strconv"

	"github.com/primeo/api/internal/httpx"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidParams is returned for out-of-range page/limit values; handlers map
// it to a 400.
var ErrInvalidParams = errors.New("paramètres de pagination invalides")

// Params is a validated page/limit pair.
type Params struct {
	Page  int
	Limit int
}

// Parse validates raw page/limit query values. Empty strings fall back to
// defaults; page < 1 or limit outside [1,100] is rejected.
func Parse(pageStr, limitStr string) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	if pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil || n < 1 {
			return Params{}, ErrInvalidParams
		}
		p.Page = n
	}
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > MaxLimit {
			return Params{}, ErrInvalidParams
		}
		p.Limit = n
	}
	return p, nil
}

// Skip returns the row offset: (page-1)*limit.
func (p Params) Skip() int { return (p.Page - 1) * p.Limit }

// Meta builds the response metadata for a given total row count.
func (p Params) Meta(total int64) httpx.Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return httpx.Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
