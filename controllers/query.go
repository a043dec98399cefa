package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// applySearch adds a case-insensitive substring filter over cols when the
// ?search= parameter is present. LOWER + LIKE so it behaves the same on
// PostgreSQL and SQLite.
func applySearch(c *gin.Context, q *gorm.DB, cols ...string) *gorm.DB {
	term := strings.TrimSpace(c.Query("search"))
	if term == "" {
		return q
	}

	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		clauses = append(clauses, "LOWER("+col+") LIKE ?")
		args = append(args, pattern)
	}
	return q.Where(strings.Join(clauses, " OR "), args...)
}

// applyOrdering sorts by the ?ordering= column when it is in the whitelist,
// falling back to def. A "-" prefix flips to descending.
func applyOrdering(c *gin.Context, q *gorm.DB, allowed map[string]bool, def string) *gorm.DB {
	col := c.Query("ordering")
	if col == "" {
		return q.Order(def)
	}

	desc := strings.HasPrefix(col, "-")
	if desc {
		col = col[1:]
	}
	if !allowed[col] {
		return q.Order(def)
	}
	if desc {
		return q.Order(col + " DESC")
	}
	return q.Order(col)
}

// applyActiveFilter narrows by the active flag when ?active= is supplied
func applyActiveFilter(c *gin.Context, q *gorm.DB) *gorm.DB {
	if v, ok := c.GetQuery("active"); ok {
		q = q.Where("active = ?", strings.EqualFold(v, "true"))
	}
	return q
}
