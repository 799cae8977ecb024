package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apperr"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		limit   string
		want    Page
		wantErr bool
	}{
		{name: "defaults", want: Page{Number: 1, Limit: 10}},
		{name: "explicit", page: "3", limit: "25", want: Page{Number: 3, Limit: 25}},
		{name: "whitespace", page: " 2 ", limit: " 5", want: Page{Number: 2, Limit: 5}},
		{name: "clamped limit", page: "1", limit: "1000", want: Page{Number: 1, Limit: MaxLimit}},
		{name: "zero page", page: "0", wantErr: true},
		{name: "negative limit", limit: "-4", wantErr: true},
		{name: "non numeric page", page: "two", wantErr: true},
		{name: "non numeric limit", limit: "1.5", wantErr: true},
		{name: "deepest page", page: "10001", limit: "100", want: Page{Number: 10001, Limit: 100}},
		{name: "page beyond offset cap", page: "10002", limit: "100", wantErr: true},
		{name: "page that would overflow the offset", page: "92233720368547760", limit: "100", wantErr: true},
		{name: "page above int range", page: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePage(tt.page, tt.limit)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageWindow(t *testing.T) {
	p := Page{Number: 2, Limit: 5}
	assert.Equal(t, 5, p.Offset())

	start, end := p.Window(12)
	assert.Equal(t, 5, start)
	assert.Equal(t, 10, end)

	start, end = Page{Number: 3, Limit: 5}.Window(12)
	assert.Equal(t, 10, start)
	assert.Equal(t, 12, end)

	start, end = Page{Number: 9, Limit: 5}.Window(12)
	assert.Equal(t, 12, start)
	assert.Equal(t, 12, end)
}

func TestPageWindowNeverLeavesBounds(t *testing.T) {
	huge := Page{Number: 92233720368547760, Limit: 100}
	require.Negative(t, huge.Offset())

	start, end := huge.Window(12)
	assert.True(t, start >= 0 && start <= end && end <= 12)

	start, end = Page{Number: 1, Limit: int(^uint(0) >> 1)}.Window(12)
	assert.Equal(t, 0, start)
	assert.Equal(t, 12, end)
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSort(), s)

	s, err = ParseSort("Views", "ASC")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: SortViews, Direction: Asc}, s)

	_, err = ParseSort("password", "asc")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ParseSort("title", "sideways")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
