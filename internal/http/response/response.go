// Package response единый JSON-конверт ответов и соответствие
// доменных ошибок HTTP-статусам.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/librarian"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
	accountservice "github.com/magabrotheeeer/cloudslims/internal/services/account"
	subservice "github.com/magabrotheeeer/cloudslims/internal/services/subscription"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
	"github.com/magabrotheeeer/cloudslims/internal/storage/objectstore"
)

// Response — стандартный JSON-ответ.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — ответ с ошибкой для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OK возвращает успешный ответ без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// OKWithData возвращает успешный ответ с данными.
func OKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error возвращает ответ с ошибкой.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: msg}
}

// ValidationError собирает ошибки валидатора в одну строку.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be >= %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{Status: StatusError, Error: strings.Join(msgs, ", ")}
}

type mapping struct {
	target error
	code   int
	msg    string
}

var mappings = []mapping{
	{identity.ErrNoSession, http.StatusUnauthorized, "missing session"},
	{identity.ErrInvalidSession, http.StatusUnauthorized, "invalid or expired session"},
	{identity.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{identity.ErrEmailTaken, http.StatusConflict, "email already registered"},
	{accountservice.ErrSubdomainTaken, http.StatusConflict, "subdomain already taken"},
	{storage.ErrSubdomainTaken, http.StatusConflict, "subdomain already taken"},
	{storage.ErrEmailTaken, http.StatusConflict, "email already registered"},
	{accountservice.ErrInvalidSubdomain, http.StatusUnprocessableEntity, "subdomain must contain a-z, 0-9 or '-'"},
	{lifecycle.ErrUnknownPlan, http.StatusUnprocessableEntity, "unknown plan"},
	{lifecycle.ErrEmptyProofURL, http.StatusUnprocessableEntity, "empty payment proof url"},
	{lifecycle.ErrInvalidTransition, http.StatusConflict, "status transition not allowed"},
	{lifecycle.ErrValidUntilWithoutActivation, http.StatusUnprocessableEntity, "valid_until requires an activated subscription"},
	{subservice.ErrForbidden, http.StatusForbidden, "admin role required"},
	{subservice.ErrUnknownFormat, http.StatusBadRequest, "format must be pdf or text"},
	{storage.ErrNotFound, http.StatusNotFound, "not found"},
	{objectstore.ErrEmptyFile, http.StatusBadRequest, "empty file"},
	{objectstore.ErrTooLarge, http.StatusBadRequest, "file too large"},
	{objectstore.ErrUnsupportedType, http.StatusUnprocessableEntity, "file must be an image"},
	{objectstore.ErrUpload, http.StatusBadGateway, "could not store file, try again"},
	{librarian.ErrGeneration, http.StatusBadGateway, "librarian is unavailable, try again"},
}

// StatusFor возвращает HTTP-статус и сообщение для ошибки сервиса.
// Неизвестные ошибки — 500 без подробностей.
func StatusFor(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.code, m.msg
		}
	}
	return http.StatusInternalServerError, "internal error"
}
