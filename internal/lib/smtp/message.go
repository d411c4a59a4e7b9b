package smtp

import (
	"fmt"
	"mime"
	"strings"
	"time"
)

// Message — простое текстовое письмо.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
}

// Bytes кодирует письмо в формат RFC 5322. Тема кодируется как UTF-8 Q-encoding.
func (m Message) Bytes() []byte {
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")

	headers := []string{
		"From: " + m.From,
		"To: " + strings.Join(m.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", m.Subject),
		"Date: " + m.Date.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"Content-Transfer-Encoding: 8bit",
	}
	return []byte(fmt.Sprintf("%s\r\n\r\n%s", strings.Join(headers, "\r\n"), body))
}

// Send передаёт письмо через уже открытую сессию и завершает её.
func Send(c Client, m Message) error {
	const op = "smtp.Send"
	if err := c.Mail(m.From); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	for _, addr := range m.To {
		if err := c.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt %s: %w", op, addr, err)
		}
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write(m.Bytes()); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
