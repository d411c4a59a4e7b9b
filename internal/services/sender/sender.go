// Package services отправляет письма по уведомлениям из очереди.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/invoice"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/lib/smtp"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// ErrMalformed — сообщение нельзя разобрать или тип уведомления неизвестен.
var ErrMalformed = errors.New("malformed notification")

// Recorder — счётчик отправленных писем.
type Recorder interface {
	Email(kind string, err error)
}

type SenderService struct {
	transport smtp.TransportInterface
	catalogue invoice.Catalogue
	metrics   Recorder
	log       *slog.Logger
	now       func() time.Time
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, catalogue invoice.Catalogue, metrics Recorder, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		catalogue: catalogue,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Handle разбирает сообщение из очереди и отправляет письмо.
// Испорченные сообщения логируются и подтверждаются, чтобы не зацикливать очередь;
// ошибка SMTP возвращается, и сообщение уходит на повтор.
func (s *SenderService) Handle(_ context.Context, body []byte) error {
	const op = "services.sender.Handle"
	log := s.log.With(sl.Op(op))

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return nil
	}
	msg, err := s.Compose(n)
	if err != nil {
		log.Error("dropping notification", slog.String("kind", string(n.Kind)), sl.Err(err))
		return nil
	}

	err = s.send(msg)
	if s.metrics != nil {
		s.metrics.Email(string(n.Kind), err)
	}
	if err != nil {
		log.Error("failed to send email", slog.String("to", n.Email), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("email sent", slog.String("kind", string(n.Kind)), slog.String("to", n.Email))
	return nil
}

// Compose собирает письмо по уведомлению.
func (s *SenderService) Compose(n models.Notification) (smtp.Message, error) {
	if strings.TrimSpace(n.Email) == "" {
		return smtp.Message{}, fmt.Errorf("%w: empty recipient", ErrMalformed)
	}

	product := s.catalogue.Product
	domain := n.Subdomain + "." + s.catalogue.DomainSuffix
	until := ""
	if n.ValidUntil != nil {
		until = invoice.FormatDate(*n.ValidUntil)
	}

	var subject string
	var lines []string
	switch n.Kind {
	case models.NotificationExpiring:
		if n.DaysRemaining < 0 {
			subject = fmt.Sprintf("Langganan %s Anda telah berakhir", product)
			lines = []string{
				fmt.Sprintf("Langganan paket %s untuk %s telah berakhir pada %s.", n.PlanName, domain, until),
				"Silakan ajukan perpanjangan melalui dasbor dan unggah bukti pembayaran.",
			}
		} else {
			subject = fmt.Sprintf("Langganan %s Anda berakhir dalam %d hari", product, n.DaysRemaining)
			lines = []string{
				fmt.Sprintf("Langganan paket %s untuk %s berlaku hingga %s.", n.PlanName, domain, until),
				"Ajukan perpanjangan sebelum masa aktif habis agar layanan tidak terputus.",
			}
		}
	case models.NotificationActivated:
		subject = fmt.Sprintf("Pembayaran diterima: %s aktif", product)
		lines = []string{
			fmt.Sprintf("Pembayaran paket %s telah diverifikasi.", n.PlanName),
			fmt.Sprintf("%s aktif hingga %s.", domain, until),
		}
	case models.NotificationRejected:
		subject = fmt.Sprintf("Pembayaran %s ditolak", product)
		lines = []string{
			fmt.Sprintf("Bukti pembayaran paket %s untuk %s tidak dapat diverifikasi.", n.PlanName, domain),
			"Silakan unggah ulang bukti pembayaran yang valid melalui dasbor.",
		}
	default:
		return smtp.Message{}, fmt.Errorf("%w: kind %q", ErrMalformed, n.Kind)
	}

	name := n.FullName
	if name == "" {
		name = n.Institution
	}
	body := "Halo " + name + ",\n\n" + strings.Join(lines, "\n") + "\n\n" + s.catalogue.Footer + "\n"

	return smtp.Message{
		From:    s.transport.Sender(),
		To:      []string{n.Email},
		Subject: subject,
		Body:    body,
		Date:    s.now(),
	}, nil
}

func (s *SenderService) send(msg smtp.Message) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client close", sl.Err(err))
		}
	}()
	return smtp.Send(client, msg)
}
