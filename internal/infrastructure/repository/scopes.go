package repository

import (
	"strings"
	"time"

	"github.com/sangkips/retailpos-api/pkg/pagination"
	"gorm.io/gorm"
)

// SearchScope matches term against any of the columns case-insensitively.
// An empty term leaves the query unfiltered.
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + term + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = col + " ILIKE ?"
			args[i] = like
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// DateRangeScope bounds column by optional start and end times
func DateRangeScope(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" <= ?", *end)
		}
		return db
	}
}

// PageScope applies offset pagination; nil params fall back to the defaults
func PageScope(params *pagination.Params) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			params = &pagination.Params{}
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}
