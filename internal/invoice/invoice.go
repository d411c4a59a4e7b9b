// Package invoice собирает счёт по снимку подписки и профиля.
// Результат зависит только от входных данных и статического каталога оплаты:
// дата счёта всегда created_at подписки, текущее время не используется.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PaymentMethod — реквизиты для оплаты.
type PaymentMethod struct {
	Kind    string `yaml:"kind" json:"kind"`       // Bank или E-Wallet
	Name    string `yaml:"name" json:"name"`       // BCA, DANA...
	Account string `yaml:"account" json:"account"` // Номер счёта или телефона
	Holder  string `yaml:"holder" json:"holder"`
}

// Catalogue — статические данные, которые печатаются в каждом счёте.
type Catalogue struct {
	Product      string          `yaml:"product" env-default:"CloudSLiMS"`
	DomainSuffix string          `yaml:"domain_suffix" env-default:"eslims.my.id"`
	Methods      []PaymentMethod `yaml:"methods"`
	Footer       string          `yaml:"footer" env-default:"Terima kasih telah berlangganan CloudSLiMS."`
}

// DefaultCatalogue — реквизиты по умолчанию.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		Product:      "CloudSLiMS",
		DomainSuffix: "eslims.my.id",
		Methods: []PaymentMethod{
			{Kind: "Bank Transfer", Name: "BCA", Account: "1234567890", Holder: "CloudSLiMS"},
			{Kind: "E-Wallet", Name: "DANA", Account: "081234567890", Holder: "CloudSLiMS"},
		},
		Footer: "Terima kasih telah berlangganan CloudSLiMS.",
	}
}

// Party — блок "Кому".
type Party struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Phone       string `json:"phone"`
}

// LineItem — позиция счёта.
type LineItem struct {
	Description string `json:"description"`
	Domain      string `json:"domain"`
	Period      string `json:"period"`
	Amount      string `json:"amount"`
}

// Document — счёт, готовый к выводу.
type Document struct {
	Product   string          `json:"product"`
	Title     string          `json:"title"`
	Number    string          `json:"number"`
	BillTo    Party           `json:"bill_to"`
	IssueDate string          `json:"issue_date"`
	Status    string          `json:"status"`
	Items     []LineItem      `json:"items"`
	Total     string          `json:"total"`
	Payment   []PaymentMethod `json:"payment"`
	Footer    string          `json:"footer"`
	IssuedAt  time.Time       `json:"issued_at"`
}

// wib — Waktu Indonesia Barat, UTC+7.
var wib = time.FixedZone("WIB", 7*60*60)

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var statusLabels = map[models.Status]string{
	models.StatusPending:  "MENUNGGU VERIFIKASI",
	models.StatusActive:   "LUNAS",
	models.StatusRejected: "DITOLAK",
	models.StatusExpired:  "KEDALUWARSA",
}

var printer = message.NewPrinter(language.Indonesian)

// Number возвращает номер счёта: первый сегмент идентификатора подписки в верхнем регистре.
func Number(subscriptionID string) string {
	first, _, _ := strings.Cut(subscriptionID, "-")
	return strings.ToUpper(first)
}

// FormatDate печатает дату по-индонезийски в часовом поясе WIB: "10 Maret 2025".
func FormatDate(t time.Time) string {
	t = t.In(wib)
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// FormatRupiah печатает сумму с разделителями разрядов: "Rp 350.000".
func FormatRupiah(amount int64) string {
	return "Rp " + printer.Sprintf("%d", amount)
}

// Build собирает документ по подписке и профилю.
func Build(sub models.Subscription, profile models.Profile, cat Catalogue) Document {
	status, ok := statusLabels[sub.Status]
	if !ok {
		status = strings.ToUpper(string(sub.Status))
	}
	methods := make([]PaymentMethod, len(cat.Methods))
	copy(methods, cat.Methods)

	return Document{
		Product: cat.Product,
		Title:   "INVOICE",
		Number:  Number(sub.ID),
		BillTo: Party{
			Name:        profile.FullName,
			Institution: profile.Institution,
			Phone:       profile.Phone,
		},
		IssueDate: FormatDate(sub.CreatedAt),
		Status:    status,
		Items: []LineItem{{
			Description: fmt.Sprintf("Langganan %s %s", cat.Product, sub.PlanName),
			Domain:      profile.Subdomain + "." + cat.DomainSuffix,
			Period:      "1 Tahun",
			Amount:      FormatRupiah(sub.Price),
		}},
		Total:    FormatRupiah(sub.Price),
		Payment:  methods,
		Footer:   cat.Footer,
		IssuedAt: sub.CreatedAt,
	}
}
