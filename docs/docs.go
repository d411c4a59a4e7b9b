// Package docs — описание API для Swagger UI.
// Пересобирается командой: swag init -g cmd/cloudslims/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/register": {"post": {"tags": ["Auth"], "summary": "Регистрация учреждения", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Email или поддомен заняты", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}, "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/login": {"post": {"tags": ["Auth"], "summary": "Вход", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Неверный email или пароль", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Выход", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/session": {"get": {"tags": ["Auth"], "summary": "Состояние сессии", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/plans": {"get": {"tags": ["Plans"], "summary": "Тарифные планы", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/librarian/search": {"post": {"tags": ["Librarian"], "summary": "ИИ-библиотекарь", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/search.Request"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}, "502": {"description": "Модель недоступна", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/me/subscription": {"get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Текущая подписка", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "404": {"description": "Подписок нет", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/me/subscription/proof": {"post": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Загрузка чека об оплате", "consumes": ["multipart/form-data"], "produces": ["application/json"],
            "parameters": [{"type": "file", "in": "formData", "name": "file", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Нет файла или файл слишком большой", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}, "422": {"description": "Файл не является изображением", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}, "502": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/me/subscription/renew": {"post": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Продление подписки", "produces": ["application/json"],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/me/subscription/invoice": {"get": {"security": [{"BearerAuth": []}], "tags": ["Me"], "summary": "Счёт по подписке", "produces": ["application/pdf", "text/plain"],
            "parameters": [{"type": "string", "in": "query", "name": "format", "description": "pdf или text"}],
            "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "400": {"description": "Неизвестный формат", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/admin/subscriptions": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Список подписок", "produces": ["application/json"],
            "parameters": [{"type": "string", "in": "query", "name": "search", "description": "Подстрока в названии учреждения, ФИО, поддомене или плане"}, {"type": "string", "enum": ["all", "pending", "active", "rejected"], "in": "query", "name": "status"}, {"type": "string", "in": "query", "name": "role"}, {"type": "integer", "in": "query", "name": "page"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "403": {"description": "Нужна роль admin", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/admin/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Сводка", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/admin/tenants/{userID}/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "История арендатора", "produces": ["application/json"],
            "parameters": [{"type": "string", "in": "path", "name": "userID", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/admin/subscriptions/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Редактировать арендатора", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AdminEdit"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Поддомен занят или переход запрещён", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Удалить запись", "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "404": {"description": "Запись не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/admin/subscriptions/{id}/activate": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Активировать подписку", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}, {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/activate.Request"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Переход запрещён", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/admin/subscriptions/{id}/reject": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Отклонить заявку", "produces": ["application/json"],
            "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Переход запрещён", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}}}},
        "/admin/subscriptions/{id}/invoice": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Счёт по записи", "produces": ["application/pdf", "text/plain"],
            "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}, {"type": "string", "in": "query", "name": "format"}],
            "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}}
    },
    "definitions": {
        "response.Response": {"type": "object", "properties": {"status": {"type": "string"}, "error": {"type": "string"}, "data": {}}},
        "response.ErrorResponse": {"type": "object", "properties": {"status": {"type": "string", "example": "Error"}, "error": {"type": "string", "example": "invalid request body"}}},
        "models.RegisterRequest": {"type": "object", "required": ["email", "password", "full_name", "institution", "subdomain", "phone", "plan"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 6}, "full_name": {"type": "string"}, "institution": {"type": "string"}, "subdomain": {"type": "string", "maxLength": 63}, "phone": {"type": "string"}, "plan": {"type": "string", "enum": ["Starter", "Pro", "Enterprise"]}}},
        "login.Request": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "search.Request": {"type": "object", "required": ["query"], "properties": {"query": {"type": "string", "maxLength": 500}, "exclude": {"type": "array", "items": {"type": "string"}}}},
        "activate.Request": {"type": "object", "properties": {"valid_until": {"type": "string", "format": "date-time"}}},
        "models.AdminEdit": {"type": "object", "properties": {"full_name": {"type": "string"}, "institution": {"type": "string"}, "subdomain": {"type": "string"}, "phone": {"type": "string"}, "plan_name": {"type": "string", "enum": ["Starter", "Pro", "Enterprise"]}, "status": {"type": "string", "enum": ["pending", "active", "rejected"]}, "price": {"type": "integer", "minimum": 0}, "valid_until": {"type": "string", "format": "date-time"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo — метаданные API, подставляемые в шаблон.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "CloudSLiMS API",
	Description:      "Подписки на облачный SLiMS: регистрация, проверка оплаты, активация и счета",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
