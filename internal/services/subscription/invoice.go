package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/cloudslims/internal/invoice"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// Format — формат счёта.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// ErrUnknownFormat — запрошен неподдерживаемый формат счёта.
var ErrUnknownFormat = errors.New("unknown invoice format")

// ParseFormat разбирает формат; пустая строка означает PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatText:
		return FormatText, nil
	}
	return "", ErrUnknownFormat
}

// Rendered — готовый файл счёта.
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Invoice формирует счёт по текущей подписке пользователя.
func (s *SubscriptionService) Invoice(ctx context.Context, userID string, format Format) (Rendered, error) {
	const op = "services.subscription.Invoice"
	sub, err := s.repo.CurrentSubscription(ctx, userID)
	if err != nil {
		return Rendered{}, fmt.Errorf("%s: %w", op, err)
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return Rendered{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.render(op, sub, profile, format)
}

// AdminInvoice формирует счёт по любой записи.
func (s *SubscriptionService) AdminInvoice(ctx context.Context, actorID, id string, format Format) (Rendered, error) {
	const op = "services.subscription.AdminInvoice"
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return Rendered{}, fmt.Errorf("%s: %w", op, err)
	}
	row, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return Rendered{}, fmt.Errorf("%s: %w", op, err)
	}
	var profile models.Profile
	if row.Profile != nil {
		profile = *row.Profile
	}
	return s.render(op, row.Subscription, profile, format)
}

func (s *SubscriptionService) render(op string, sub models.Subscription, profile models.Profile, format Format) (Rendered, error) {
	doc := invoice.Build(sub, profile, s.catalogue)
	name := "Invoice-" + doc.Number

	switch format {
	case FormatText:
		return Rendered{Filename: name + ".txt", ContentType: "text/plain; charset=utf-8", Body: invoice.RenderText(doc)}, nil
	case FormatPDF:
		body, err := invoice.RenderPDF(doc)
		if err != nil {
			return Rendered{}, fmt.Errorf("%s: %w", op, err)
		}
		return Rendered{Filename: name + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
	return Rendered{}, fmt.Errorf("%s: %w", op, ErrUnknownFormat)
}
