package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	require.Equal(t, Pagination{Limit: DefaultPageSize}, NewPagination(0, -5))
	require.Equal(t, Pagination{Limit: MaxPageSize, Offset: 10}, NewPagination(MaxPageSize+1, 10))
	require.Equal(t, Pagination{Limit: MaxPageSize}, NewPagination(MaxPageSize, 0))
	require.Equal(t, Pagination{Limit: 25, Offset: 50}, NewPagination(25, 50))
}
