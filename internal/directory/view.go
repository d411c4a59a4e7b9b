package directory

import "github.com/magabrotheeeer/cloudslims/internal/models"

// View хранит текущие фильтры администратора.
// Любая смена фильтра возвращает на первую страницу.
type View struct {
	Filter Filter `json:"filter"`
}

// NewView возвращает представление без фильтров на первой странице.
func NewView() View {
	return View{Filter: Filter{}.normalized()}
}

// SetSearch меняет поисковую строку.
func (v *View) SetSearch(term string) {
	if v.Filter.Search != term {
		v.Filter.Search = term
		v.Filter.Page = 1
	}
}

// SetStatus меняет фильтр по статусу.
func (v *View) SetStatus(status string) {
	if status == "" {
		status = FilterAll
	}
	if v.Filter.Status != status {
		v.Filter.Status = status
		v.Filter.Page = 1
	}
}

// SetRole меняет фильтр по роли.
func (v *View) SetRole(role string) {
	if role == "" {
		role = FilterAll
	}
	if v.Filter.Role != role {
		v.Filter.Role = role
		v.Filter.Page = 1
	}
}

// SetPage переходит на страницу page; значения меньше 1 приводятся к 1.
func (v *View) SetPage(page int) {
	v.Filter.Page = max(page, 1)
}

// Apply выполняет выборку с текущими фильтрами.
func (v View) Apply(rows []models.TenantRow) Page {
	return Query(rows, v.Filter)
}
