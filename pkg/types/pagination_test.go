package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageQuery(t *testing.T) {
	tests := []struct {
		name       string
		from, size string
		sortBy     string
		sortOrder  string
		want       PageQuery
	}{
		{name: "defaults", want: PageQuery{From: 0, Size: 50, SortBy: "created_at", SortOrder: "desc"}},
		{name: "explicit values", from: "20", size: "10", sortBy: "name", sortOrder: "asc",
			want: PageQuery{From: 20, Size: 10, SortBy: "name", SortOrder: "asc"}},
		{name: "size capped", size: "5000", want: PageQuery{From: 0, Size: 200, SortBy: "created_at", SortOrder: "desc"}},
		{name: "negative from ignored", from: "-3", want: PageQuery{From: 0, Size: 50, SortBy: "created_at", SortOrder: "desc"}},
		{name: "unknown sort field falls back", sortBy: "password",
			want: PageQuery{From: 0, Size: 50, SortBy: "created_at", SortOrder: "desc"}},
		{name: "garbage numbers ignored", from: "x", size: "y",
			want: PageQuery{From: 0, Size: 50, SortBy: "created_at", SortOrder: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePageQuery(tt.from, tt.size, tt.sortBy, tt.sortOrder, "created_at", "name")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageQuery_OrderClause(t *testing.T) {
	assert.Equal(t, "created_at desc", PageQuery{SortBy: "created_at", SortOrder: "desc"}.OrderClause())
	assert.Equal(t, "", PageQuery{}.OrderClause())
}
