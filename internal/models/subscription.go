// Package models содержит доменные структуры CloudSLiMS: профиль арендатора,
// запись подписки и их объединённое представление для админ-панели,
// а также структуры для приёма данных из JSON-запросов.
package models

import "time"

// Status — сохранённый статус записи подписки.
type Status string

const (
	// StatusPending — запись ожидает проверки администратором.
	StatusPending Status = "pending"
	// StatusActive — оплата подтверждена, сервис активен до ValidUntil.
	StatusActive Status = "active"
	// StatusRejected — администратор отклонил оплату.
	StatusRejected Status = "rejected"
	// StatusExpired — только вычисляемый статус, в хранилище не пишется.
	StatusExpired Status = "expired"
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// Subscription — одна запись журнала подписок: один оплачиваемый период
// или одна заявка на него. Текущей считается самая поздняя запись пользователя.
type Subscription struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	PlanName        string     `json:"plan_name"`
	Price           int64      `json:"price"` // Цена в рупиях, фиксируется при создании
	Status          Status     `json:"status"`
	PaymentProofURL *string    `json:"payment_proof_url,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"` // Заполняется только при активации
	CreatedAt       time.Time  `json:"created_at"`
}

// TenantRow — запись подписки вместе с профилем владельца.
// Формируется при чтении, в хранилище как сущность не существует.
type TenantRow struct {
	Subscription
	Profile *Profile `json:"profiles,omitempty"`
	// NextStatuses — статусы, в которые запись можно перевести из текущего.
	NextStatuses []Status `json:"next_statuses,omitempty"`
}

// SubscriptionView — текущая подписка пользователя с вычисленными признаками истечения.
type SubscriptionView struct {
	Subscription
	DerivedStatus  Status `json:"derived_status"`
	DaysRemaining  *int   `json:"days_remaining,omitempty"`
	IsExpiringSoon bool   `json:"is_expiring_soon"`
	IsExpired      bool   `json:"is_expired"`
}

// AdminEdit — изменения, которые администратор вносит через форму редактирования.
// Nil-поля не меняются.
type AdminEdit struct {
	FullName    *string    `json:"full_name,omitempty"`
	Institution *string    `json:"institution,omitempty"`
	Subdomain   *string    `json:"subdomain,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	PlanName    *string    `json:"plan_name,omitempty" validate:"omitempty,oneof=Starter Pro Enterprise"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=pending active rejected"`
	Price       *int64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
}

// Stats — сводные показатели для админ-панели.
type Stats struct {
	TotalTenants int   `json:"total_tenants"`
	Pending      int   `json:"pending"`
	Revenue      int64 `json:"revenue"`
	MRR          int64 `json:"mrr"`
}
