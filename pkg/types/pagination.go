package types

import "strconv"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PageQuery carries offset pagination and sorting read from query params.
type PageQuery struct {
	From      int
	Size      int
	SortBy    string
	SortOrder string
}

// ParsePageQuery builds a PageQuery from raw query values, falling back to
// defaults on empty or unparseable input. sortFields is the allow-list of
// sortable columns; the first entry is the default.
func ParsePageQuery(from, size, sortBy, sortOrder string, sortFields ...string) PageQuery {
	q := PageQuery{From: 0, Size: defaultPageSize, SortOrder: "desc"}
	if len(sortFields) > 0 {
		q.SortBy = sortFields[0]
	}

	if n, err := strconv.Atoi(from); err == nil && n >= 0 {
		q.From = n
	}
	if n, err := strconv.Atoi(size); err == nil && n > 0 {
		q.Size = n
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	for _, f := range sortFields {
		if sortBy == f {
			q.SortBy = f
			break
		}
	}
	if sortOrder == "asc" {
		q.SortOrder = "asc"
	}
	return q
}

// OrderClause returns the SQL ORDER BY fragment, empty when no sort field
// was configured.
func (q PageQuery) OrderClause() string {
	if q.SortBy == "" {
		return ""
	}
	return q.SortBy + " " + q.SortOrder
}

// Page is a generic offset-paginated result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	From  int   `json:"from"`
	Size  int   `json:"size"`
}
