// Package pagination parses list query parameters and applies them to gorm queries.
package pagination

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"forum-api/internal/response"
)

const (
	DefaultPage    = 1
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxQueryLength = 50
)

// SortDir is the direction of a sort
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Resource describes how one list endpoint may be sorted and searched
type Resource struct {
	// SortFields maps the public sortBy name to its column
	SortFields map[string]string
	// DefaultSort is the sortBy used when the request has none
	DefaultSort string
	// SearchColumns are matched case-insensitively against q
	SearchColumns []string
	// LeadingOrder is applied before the requested sort
	LeadingOrder []clause.OrderByColumn
}

// WithDefaultSort returns a copy of r sorted by field unless the request says otherwise
func (r Resource) WithDefaultSort(field string) Resource {
	r.DefaultSort = field
	return r
}

// RawQuery holds list parameters exactly as received
type RawQuery struct {
	Page    string `form:"page"`
	Limit   string `form:"limit"`
	SortBy  string `form:"sortBy"`
	SortDir string `form:"sortDir"`
	Q       string `form:"q"`
}

// Query is a validated set of list parameters
type Query struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir SortDir
	Q       string
}

// Offset is the number of rows skipped before the page
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Parse validates raw against the resource's rules and applies defaults.
// An unknown sortBy is rejected rather than replaced by the default.
func Parse(raw RawQuery, res Resource) (Query, error) {
	q := Query{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		SortBy:  res.DefaultSort,
		SortDir: SortDesc,
	}

	if s := strings.TrimSpace(raw.Page); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return Query{}, response.NewValidationError("Invalid page", "page must be an integer greater than or equal to 1")
		}
		q.Page = page
	}

	if s := strings.TrimSpace(raw.Limit); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > MaxLimit {
			return Query{}, response.NewValidationError("Invalid limit", fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit))
		}
		q.Limit = limit
	}

	if s := strings.TrimSpace(raw.SortBy); s != "" {
		if _, ok := res.SortFields[s]; !ok {
			return Query{}, response.NewValidationError("Invalid sortBy", fmt.Sprintf("sortBy must be one of: %s", strings.Join(res.sortNames(), ", ")))
		}
		q.SortBy = s
	}

	switch SortDir(strings.ToLower(strings.TrimSpace(raw.SortDir))) {
	case "":
	case SortAsc:
		q.SortDir = SortAsc
	case SortDesc:
		q.SortDir = SortDesc
	default:
		return Query{}, response.NewValidationError("Invalid sortDir", "sortDir must be asc or desc")
	}

	q.Q = strings.TrimSpace(raw.Q)
	if utf8.RuneCountInString(q.Q) > MaxQueryLength {
		return Query{}, response.NewValidationError("Invalid q", fmt.Sprintf("q must be at most %d characters", MaxQueryLength))
	}

	return q, nil
}

func (r Resource) sortNames() []string {
	names := make([]string, 0, len(r.SortFields))
	for name := range r.SortFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search filters rows whose search columns contain q, ignoring case
func Search(res Resource, q string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q == "" || len(res.SearchColumns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"

		conditions := make([]string, len(res.SearchColumns))
		args := make([]interface{}, len(res.SearchColumns))
		for i, col := range res.SearchColumns {
			conditions[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conditions, " OR ")+")", args...)
	}
}

// Order sorts by the resource's leading order, then the requested field, then id
func Order(res Resource, q Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		columns := append([]clause.OrderByColumn{}, res.LeadingOrder...)
		if col, ok := res.SortFields[q.SortBy]; ok {
			columns = append(columns, clause.OrderByColumn{
				Column: clause.Column{Name: col},
				Desc:   q.SortDir == SortDesc,
			})
		}
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		return db.Order(clause.OrderBy{Columns: columns})
	}
}

// Paginate limits the query to the requested page
func Paginate(q Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}

// Find counts every row of base matching q and loads the requested page into dest.
// fetchScopes (preloads, joins) are applied to the page query only.
func Find[T any](base *gorm.DB, res Resource, q Query, dest *[]T, fetchScopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	tx := base.Session(&gorm.Session{})

	var total int64
	if err := tx.Scopes(Search(res, q.Q)).Count(&total).Error; err != nil {
		return 0, err
	}

	// Offset overflows for huge page numbers, so compare pages
	if total == 0 || int64(q.Page) > int64(TotalPages(total, q.Limit)) {
		*dest = []T{}
		return total, nil
	}

	scopes := append([]func(*gorm.DB) *gorm.DB{Search(res, q.Q), Order(res, q), Paginate(q)}, fetchScopes...)
	if err := tx.Scopes(scopes...).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// TotalPages is ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// Page is one page of a list response
type Page[T any] struct {
	Items      []T   `json:"items"`
	Count      int   `json:"count"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage builds a Page from the items of the current page
func NewPage[T any](items []T, total int64, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Count:      len(items),
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: TotalPages(total, q.Limit),
	}
}

// MapPage converts the items of a page
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{
		Items:      out,
		Count:      p.Count,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
