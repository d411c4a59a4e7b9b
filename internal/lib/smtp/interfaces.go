// Package smtp отправка писем через SMTP с обязательным STARTTLS.
package smtp

import "io"

// Client — команды SMTP-сессии, которые использует sender.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает SMTP-сессию и знает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	Sender() string
}
