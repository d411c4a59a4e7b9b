package lifecycle

import (
	"errors"
	"strings"
)

// ErrUnknownPlan возвращается для плана вне каталога.
var ErrUnknownPlan = errors.New("unknown plan")

// Plan — тарифный план из каталога.
type Plan struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`      // Годовая цена в рупиях, 0 — по договорённости
	Negotiated bool   `json:"negotiated"` // Цену задаёт администратор
}

const (
	PlanStarter    = "Starter"
	PlanPro        = "Pro"
	PlanEnterprise = "Enterprise"
)

var catalogue = []Plan{
	{Name: PlanStarter, Price: 150000},
	{Name: PlanPro, Price: 350000},
	{Name: PlanEnterprise, Negotiated: true},
}

// Plans возвращает копию каталога планов.
func Plans() []Plan {
	out := make([]Plan, len(catalogue))
	copy(out, catalogue)
	return out
}

// ParsePlan ищет план по имени без учёта регистра.
func ParsePlan(name string) (Plan, error) {
	for _, p := range catalogue {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownPlan
}

// PriceFor возвращает цену плана на момент создания записи.
// Для Enterprise цена согласуется отдельно, поэтому возвращается 0.
func PriceFor(name string) (int64, error) {
	p, err := ParsePlan(name)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}

// NormalizeSubdomain приводит поддомен к нижнему регистру и удаляет всё, кроме [a-z0-9-].
func NormalizeSubdomain(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
