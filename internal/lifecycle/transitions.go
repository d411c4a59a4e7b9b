// Package lifecycle описывает допустимые переходы статуса подписки и их побочные эффекты.
//
// Все функции пакета — чистые преобразования значений: время передаётся явно,
// сохранение результата остаётся заботой вызывающего кода.
package lifecycle

import (
	"errors"
	"slices"

	"github.com/magabrotheeeer/cloudslims/internal/models"
)

var (
	// ErrInvalidTransition возвращается, если переход из текущего статуса запрещён.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyProofURL возвращается при попытке прикрепить пустую ссылку на чек.
	ErrEmptyProofURL = errors.New("payment proof url is empty")
	// ErrValidUntilWithoutActivation возвращается, если дату окончания пытаются
	// задать записи, которая ни разу не была активирована.
	ErrValidUntilWithoutActivation = errors.New("valid_until requires an activated subscription")
)

// Transition — пара статусов "из" и "в".
type Transition struct {
	From models.Status
	To   models.Status
}

var validTransitions = map[Transition]bool{
	{models.StatusPending, models.StatusActive}:    true, // Оплата подтверждена
	{models.StatusPending, models.StatusRejected}:  true, // Оплата отклонена
	{models.StatusActive, models.StatusActive}:     true, // Повторная активация продлевает срок
	{models.StatusActive, models.StatusPending}:    true, // Новый чек
	{models.StatusRejected, models.StatusPending}:  true, // Новый чек после отказа
	{models.StatusPending, models.StatusPending}:   true, // Замена чека
	{models.StatusRejected, models.StatusRejected}: true,
}

// CanTransition проверяет, разрешён ли переход между статусами.
func CanTransition(from, to models.Status) bool {
	return validTransitions[Transition{from, to}]
}

// ValidTransitionsFrom возвращает отсортированный список статусов, достижимых из from.
func ValidTransitionsFrom(from models.Status) []models.Status {
	targets := make([]models.Status, 0)
	for t := range validTransitions {
		if t.From == from && t.To != from {
			targets = append(targets, t.To)
		}
	}
	slices.Sort(targets)
	return targets
}
