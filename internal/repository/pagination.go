package repository

import "gorm.io/gorm"

const defaultPageSize = 20
const maxPageSize = 100

// NormalizePage clamps page numbers and sizes to sane bounds.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// applyPagination applies normalized paging to a query.
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil {
		return query
	}
	page, pageSize = NormalizePage(page, pageSize)
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
