// Package directory строит отфильтрованное постраничное представление
// подписок вместе с профилями владельцев для админ-панели.
package directory

import (
	"math"
	"slices"
	"strings"

	"github.com/magabrotheeeer/cloudslims/internal/models"
)

const (
	// FilterAll отключает фильтр по статусу или роли.
	FilterAll = "all"
	// DefaultPageSize — размер страницы по умолчанию.
	DefaultPageSize = 5
)

// Filter — параметры выборки.
type Filter struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	Role     string `json:"role"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Page — результат выборки.
type Page struct {
	Rows       []models.TenantRow `json:"rows"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Total      int                `json:"total"`
}

func (f Filter) normalized() Filter {
	if f.Status == "" {
		f.Status = FilterAll
	}
	if f.Role == "" {
		f.Role = FilterAll
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Matches сообщает, проходит ли строка все три фильтра.
func (f Filter) Matches(row models.TenantRow) bool {
	f = f.normalized()
	return matchSearch(row, f.Search) && matchStatus(row, f.Status) && matchRole(row, f.Role)
}

func matchSearch(row models.TenantRow, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	fields := []string{row.PlanName}
	if row.Profile != nil {
		fields = append(fields, row.Profile.Institution, row.Profile.FullName, row.Profile.Subdomain)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func matchStatus(row models.TenantRow, status string) bool {
	return status == FilterAll || string(row.Status) == status
}

func matchRole(row models.TenantRow, role string) bool {
	if role == FilterAll {
		return true
	}
	return row.Profile != nil && string(row.Profile.Role) == role
}

// Query применяет фильтр и возвращает запрошенную страницу.
// Строки упорядочены по created_at по убыванию, номер страницы ограничен
// диапазоном [1, TotalPages]. Функция не меняет входной срез.
func Query(rows []models.TenantRow, f Filter) Page {
	f = f.normalized()

	matched := make([]models.TenantRow, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			matched = append(matched, r)
		}
	}
	sortNewestFirst(matched)

	total := len(matched)
	pages := int(math.Ceil(float64(total) / float64(f.PageSize)))
	if pages < 1 {
		pages = 1
	}
	if f.Page > pages {
		f.Page = pages
	}

	start := (f.Page - 1) * f.PageSize
	if start > total {
		start = total
	}
	end := min(start+f.PageSize, total)
	for i := start; i < end; i++ {
		matched[i] = WithTransitions(matched[i])
	}

	return Page{
		Rows:       matched[start:end],
		Page:       f.Page,
		TotalPages: pages,
		Total:      total,
	}
}

func sortNewestFirst(rows []models.TenantRow) {
	slices.SortStableFunc(rows, func(a, b models.TenantRow) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
