package models

import "time"

// NotificationKind — тип письма, которое отправляет sender.
type NotificationKind string

const (
	NotificationExpiring  NotificationKind = "expiring"
	NotificationActivated NotificationKind = "activated"
	NotificationRejected  NotificationKind = "rejected"
)

// Notification — сообщение в очереди уведомлений.
type Notification struct {
	Kind           NotificationKind `json:"kind"`
	SubscriptionID string           `json:"subscription_id"`
	Email          string           `json:"email"`
	FullName       string           `json:"full_name"`
	Institution    string           `json:"institution"`
	Subdomain      string           `json:"subdomain"`
	PlanName       string           `json:"plan_name"`
	ValidUntil     *time.Time       `json:"valid_until,omitempty"`
	DaysRemaining  int              `json:"days_remaining,omitempty"`
}

// NewNotification собирает уведомление по записи подписки и профилю владельца.
func NewNotification(kind NotificationKind, sub Subscription, p Profile) Notification {
	return Notification{
		Kind:           kind,
		SubscriptionID: sub.ID,
		Email:          p.Email,
		FullName:       p.FullName,
		Institution:    p.Institution,
		Subdomain:      p.Subdomain,
		PlanName:       sub.PlanName,
		ValidUntil:     sub.ValidUntil,
	}
}
