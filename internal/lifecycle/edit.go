package lifecycle

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// ApplyAdminEdit применяет правку администратора к подписке и профилю.
//
// Правка администратора — это ручное переопределение, поэтому таблица переходов
// здесь не проверяется. Смена плана на каталожный пересчитывает цену, Enterprise
// сохраняет прежнюю цену, если явная цена не передана. Активация без даты
// получает год от now. ValidUntil никогда не очищается и задаётся только
// активной или ранее активированной записи.
func ApplyAdminEdit(sub models.Subscription, profile models.Profile, edit models.AdminEdit, now time.Time) (models.Subscription, models.Profile, error) {
	const op = "lifecycle.ApplyAdminEdit"

	if edit.FullName != nil {
		profile.FullName = *edit.FullName
	}
	if edit.Institution != nil {
		profile.Institution = *edit.Institution
	}
	if edit.Subdomain != nil {
		profile.Subdomain = NormalizeSubdomain(*edit.Subdomain)
	}
	if edit.Phone != nil {
		profile.Phone = *edit.Phone
	}

	if edit.PlanName != nil && *edit.PlanName != sub.PlanName {
		plan, err := ParsePlan(*edit.PlanName)
		if err != nil {
			return sub, profile, fmt.Errorf("%s: %w", op, err)
		}
		sub.PlanName = plan.Name
		if !plan.Negotiated {
			sub.Price = plan.Price
		}
	}
	if edit.Price != nil {
		sub.Price = *edit.Price
	}

	if edit.Status != nil {
		switch *edit.Status {
		case models.StatusPending, models.StatusActive, models.StatusRejected:
			sub.Status = *edit.Status
		default:
			return sub, profile, fmt.Errorf("%s: status %q: %w", op, *edit.Status, ErrInvalidTransition)
		}
	}
	if edit.ValidUntil != nil {
		if sub.Status != models.StatusActive && sub.ValidUntil == nil {
			return sub, profile, fmt.Errorf("%s: %w", op, ErrValidUntilWithoutActivation)
		}
		until := *edit.ValidUntil
		sub.ValidUntil = &until
	}
	if sub.Status == models.StatusActive && sub.ValidUntil == nil {
		until := ValidUntilFrom(now)
		sub.ValidUntil = &until
	}
	return sub, profile, nil
}
