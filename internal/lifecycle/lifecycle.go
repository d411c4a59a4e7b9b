package lifecycle

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// ExpiringSoonDays — порог в днях, начиная с которого подписка считается истекающей.
const ExpiringSoonDays = 30

// ValidUntilFrom возвращает момент окончания годового периода, начатого в now.
func ValidUntilFrom(now time.Time) time.Time {
	return now.AddDate(1, 0, 0)
}

// Activate переводит запись в статус active.
//
// Если validUntil не передан, срок считается ровно год от момента активации,
// а не от прежнего ValidUntil: остаток предыдущего периода не суммируется.
// Повторная активация активной записи разрешена и сдвигает срок от нового момента.
func Activate(sub models.Subscription, now time.Time, validUntil *time.Time) (models.Subscription, error) {
	const op = "lifecycle.Activate"
	if !CanTransition(sub.Status, models.StatusActive) {
		return sub, fmt.Errorf("%s: %s -> %s: %w", op, sub.Status, models.StatusActive, ErrInvalidTransition)
	}
	until := ValidUntilFrom(now)
	if validUntil != nil {
		until = *validUntil
	}
	sub.Status = models.StatusActive
	sub.ValidUntil = &until
	return sub, nil
}

// Reject переводит запись в статус rejected. ValidUntil не меняется.
func Reject(sub models.Subscription) (models.Subscription, error) {
	const op = "lifecycle.Reject"
	if !CanTransition(sub.Status, models.StatusRejected) {
		return sub, fmt.Errorf("%s: %s -> %s: %w", op, sub.Status, models.StatusRejected, ErrInvalidTransition)
	}
	sub.Status = models.StatusRejected
	return sub, nil
}

// AttachProof прикрепляет ссылку на чек и всегда возвращает запись в очередь проверки.
// Это единственный путь, которым отклонённая запись снова попадает на проверку.
func AttachProof(sub models.Subscription, proofURL string) (models.Subscription, error) {
	const op = "lifecycle.AttachProof"
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return sub, fmt.Errorf("%s: %w", op, ErrEmptyProofURL)
	}
	sub.PaymentProofURL = &proofURL
	sub.Status = models.StatusPending
	return sub, nil
}

// RequestRenewal создаёт новую заявку на продление с тем же планом и ценой.
// Исходная запись не изменяется; новая становится текущей за счёт более позднего CreatedAt.
func RequestRenewal(current models.Subscription, newID string, now time.Time) models.Subscription {
	createdAt := now
	if !createdAt.After(current.CreatedAt) {
		createdAt = current.CreatedAt.Add(time.Microsecond)
	}
	return models.Subscription{
		ID:        newID,
		UserID:    current.UserID,
		PlanName:  current.PlanName,
		Price:     current.Price,
		Status:    models.StatusPending,
		CreatedAt: createdAt,
	}
}

// DaysRemaining возвращает ceil((validUntil - now) / 1 день). Может быть отрицательным.
func DaysRemaining(validUntil, now time.Time) int {
	hours := validUntil.Sub(now).Hours()
	return int(math.Ceil(hours / 24))
}

func activeWithDate(sub models.Subscription) bool {
	return sub.Status == models.StatusActive && sub.ValidUntil != nil
}

// IsExpiringSoon — активна, срок задан и осталось не больше 30 дней (включая отрицательные).
func IsExpiringSoon(sub models.Subscription, now time.Time) bool {
	return activeWithDate(sub) && DaysRemaining(*sub.ValidUntil, now) <= ExpiringSoonDays
}

// IsExpired — активна, срок задан и уже прошёл.
func IsExpired(sub models.Subscription, now time.Time) bool {
	return activeWithDate(sub) && DaysRemaining(*sub.ValidUntil, now) < 0
}

// DerivedStatus возвращает статус для отображения: активная запись с истёкшим сроком
// показывается как expired. Сохранённый статус при этом не меняется.
func DerivedStatus(sub models.Subscription, now time.Time) models.Status {
	if IsExpired(sub, now) {
		return models.StatusExpired
	}
	return sub.Status
}

// View собирает представление подписки с вычисленными признаками истечения.
func View(sub models.Subscription, now time.Time) models.SubscriptionView {
	v := models.SubscriptionView{
		Subscription:   sub,
		DerivedStatus:  DerivedStatus(sub, now),
		IsExpiringSoon: IsExpiringSoon(sub, now),
		IsExpired:      IsExpired(sub, now),
	}
	if sub.ValidUntil != nil {
		days := DaysRemaining(*sub.ValidUntil, now)
		v.DaysRemaining = &days
	}
	return v
}
