// Package storage объединяет адаптеры хранилищ и общие для них ошибки.
package storage

import "errors"

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrSubdomainTaken — поддомен уже занят другим арендатором.
	ErrSubdomainTaken = errors.New("subdomain already taken")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)
