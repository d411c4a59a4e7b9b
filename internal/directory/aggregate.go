package directory

import (
	"math"

	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// Stats считает сводку: число арендаторов, заявки на проверке,
// выручку по активным записям и оценку MRR (годовая цена / 12).
func Stats(rows []models.TenantRow) models.Stats {
	var s models.Stats
	users := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		users[r.UserID] = struct{}{}
		switch r.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusActive:
			s.Revenue += r.Price
		}
	}
	s.TotalTenants = len(users)
	s.MRR = int64(math.Round(float64(s.Revenue) / 12))
	return s
}

// History возвращает все записи арендатора, новые первыми.
func History(rows []models.TenantRow, userID string) []models.TenantRow {
	out := make([]models.TenantRow, 0)
	for _, r := range rows {
		if r.UserID == userID {
			out = append(out, WithTransitions(r))
		}
	}
	sortNewestFirst(out)
	return out
}

// WithTransitions дополняет строку статусами, доступными из текущего.
func WithTransitions(row models.TenantRow) models.TenantRow {
	row.NextStatuses = lifecycle.ValidTransitionsFrom(row.Status)
	return row
}
