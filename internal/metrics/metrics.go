// Package metrics счётчики Prometheus для жизненного цикла подписок,
// загрузок подтверждений оплаты, библиотекаря и уведомлений.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cloudslims"

// Metrics набор счётчиков. Нулевой указатель допустим: методы ничего не делают.
type Metrics struct {
	transitions   *prometheus.CounterVec
	proofUploads  *prometheus.CounterVec
	librarian     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	emails        *prometheus.CounterVec
}

// New регистрирует счётчики в reg. При повторной регистрации
// используются уже зарегистрированные коллекторы.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		transitions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_transitions_total",
			Help:      "Subscription status changes persisted by the service.",
		}, []string{"from", "to"})),
		proofUploads: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_proof_uploads_total",
			Help:      "Payment proof uploads by result.",
		}, []string{"result"})),
		librarian: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "librarian_requests_total",
			Help:      "AI librarian searches by source and result.",
		}, []string{"source", "result"})),
		notifications: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Notifications published to the broker.",
		}, []string{"kind", "result"})),
		emails: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "E-mails sent by the notification sender.",
		}, []string{"kind", "result"})),
	}
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ProofUpload(err error) {
	if m == nil {
		return
	}
	m.proofUploads.WithLabelValues(result(err)).Inc()
}

// Librarian source: "gemini" или "offline".
func (m *Metrics) Librarian(source string, err error) {
	if m == nil {
		return
	}
	m.librarian.WithLabelValues(source, result(err)).Inc()
}

func (m *Metrics) Notification(kind string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result(err)).Inc()
}

func (m *Metrics) Email(kind string, err error) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(kind, result(err)).Inc()
}
