package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/constants"
)

// PaginationParams holds the page requested on a task listing
type PaginationParams struct {
	Page  int
	Limit int
}

// GetPaginationParams reads page and limit from the query. Unparsable or
// non-positive values fall back to the defaults and an oversized limit is
// capped at MaxPageSize.
func GetPaginationParams(c *gin.Context) PaginationParams {
	params := PaginationParams{Page: 1, Limit: constants.DefaultPageSize}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page >= 1 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit >= constants.MinPageSize {
		params.Limit = min(limit, constants.MaxPageSize)
	}
	return params
}

// TotalPages counts the pages needed to show total rows, limit per page
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
