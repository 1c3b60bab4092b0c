package pagination_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/testutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      pagination.RawQuery
		want     pagination.Query
		wantCode string
	}{
		{
			name: "defaults",
			raw:  pagination.RawQuery{},
			want: pagination.Query{Page: 1, Limit: 10, SortBy: "createdAt", SortDir: pagination.SortDesc},
		},
		{
			name: "explicit values",
			raw:  pagination.RawQuery{Page: "3", Limit: "100", SortBy: "title", SortDir: "ASC", Q: "  palm  "},
			want: pagination.Query{Page: 3, Limit: 100, SortBy: "title", SortDir: pagination.SortAsc, Q: "palm"},
		},
		{name: "page zero", raw: pagination.RawQuery{Page: "0"}, wantCode: response.ErrCodeValidation},
		{name: "page not a number", raw: pagination.RawQuery{Page: "one"}, wantCode: response.ErrCodeValidation},
		{name: "limit above max", raw: pagination.RawQuery{Limit: "101"}, wantCode: response.ErrCodeValidation},
		{name: "limit zero", raw: pagination.RawQuery{Limit: "0"}, wantCode: response.ErrCodeValidation},
		{name: "sortBy outside allow-list", raw: pagination.RawQuery{SortBy: "password"}, wantCode: response.ErrCodeValidation},
		{name: "bad sortDir", raw: pagination.RawQuery{SortDir: "up"}, wantCode: response.ErrCodeValidation},
		{
			name:     "q too long",
			raw:      pagination.RawQuery{Q: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
			wantCode: response.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pagination.Parse(tt.raw, pagination.Sections)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, response.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_DefaultSortOverride(t *testing.T) {
	got, err := pagination.Parse(pagination.RawQuery{}, pagination.Users.WithDefaultSort("bannedAt"))
	require.NoError(t, err)
	assert.Equal(t, "bannedAt", got.SortBy)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, pagination.TotalPages(0, 10))
	assert.Equal(t, 1, pagination.TotalPages(10, 10))
	assert.Equal(t, 3, pagination.TotalPages(25, 10))
}

func TestProperty_TotalPagesCoversEveryItem(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("totalPages is the smallest page count holding total items", prop.ForAll(
		func(total int, limit int) bool {
			pages := pagination.TotalPages(int64(total), limit)
			if total == 0 {
				return pages == 0
			}
			return pages*limit >= total && (pages-1)*limit < total
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, pagination.MaxLimit),
	))

	properties.TestingRun(t)
}

func TestFind_PagesOverTwentyFiveRows(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	for i := 0; i < 25; i++ {
		section := &domain.Section{
			Title: fmt.Sprintf("Section %02d", i),
			Slug:  fmt.Sprintf("section-%02d", i),
			Order: i,
		}
		require.NoError(t, db.Create(section).Error)
	}

	tests := []struct {
		page      string
		wantCount int
	}{
		{"1", 10},
		{"2", 10},
		{"3", 5},
		{"4", 0},
	}

	for _, tt := range tests {
		t.Run("page "+tt.page, func(t *testing.T) {
			q, err := pagination.Parse(pagination.RawQuery{Page: tt.page, Limit: "10", SortBy: "order", SortDir: "asc"}, pagination.Sections)
			require.NoError(t, err)

			var sections []domain.Section
			total, err := pagination.Find(db.WithContext(context.Background()).Model(&domain.Section{}), pagination.Sections, q, &sections)
			require.NoError(t, err)

			page := pagination.NewPage(sections, total, q)
			assert.Equal(t, int64(25), page.Total)
			assert.Equal(t, 3, page.TotalPages)
			assert.Equal(t, tt.wantCount, page.Count)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestFind_HugePageIsEmpty(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&domain.Section{
			Title: fmt.Sprintf("Section %02d", i),
			Slug:  fmt.Sprintf("section-%02d", i),
		}).Error)
	}

	for _, page := range []string{"8", "4611686018427387904", "9223372036854775807"} {
		t.Run("page "+page, func(t *testing.T) {
			q, err := pagination.Parse(pagination.RawQuery{Page: page, Limit: "4"}, pagination.Sections)
			require.NoError(t, err)

			var sections []domain.Section
			total, err := pagination.Find(db.Model(&domain.Section{}), pagination.Sections, q, &sections)

			require.NoError(t, err)
			assert.Equal(t, int64(25), total)
			assert.Empty(t, sections)
		})
	}
}

func TestFind_SortAndSearch(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	for i, title := range []string{"Palms", "Cacti", "Tropical palms", "100%_Ferns"} {
		require.NoError(t, db.Create(&domain.Section{Title: title, Slug: fmt.Sprintf("s-%d", i), Order: i}).Error)
	}

	find := func(raw pagination.RawQuery) []string {
		q, err := pagination.Parse(raw, pagination.Sections)
		require.NoError(t, err)
		var sections []domain.Section
		_, err = pagination.Find(db.Model(&domain.Section{}), pagination.Sections, q, &sections)
		require.NoError(t, err)
		titles := make([]string, len(sections))
		for i, s := range sections {
			titles[i] = s.Title
		}
		return titles
	}

	assert.Equal(t, []string{"Palms", "Tropical palms"}, find(pagination.RawQuery{Q: "PALM", SortBy: "order", SortDir: "asc"}))
	assert.Equal(t, []string{"100%_Ferns"}, find(pagination.RawQuery{Q: "%_"}))
	assert.Empty(t, find(pagination.RawQuery{Q: "%x"}))
	assert.Equal(t, []string{"Tropical palms", "Palms", "Cacti", "100%_Ferns"}, find(pagination.RawQuery{SortBy: "title", SortDir: "desc"}))
}
