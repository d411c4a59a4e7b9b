package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const textWidth = 56

// RenderText выводит счёт моноширинным текстом.
func RenderText(doc Document) []byte {
	var b bytes.Buffer
	rule := strings.Repeat("=", textWidth) + "\n"
	thin := strings.Repeat("-", textWidth) + "\n"

	b.WriteString(rule)
	fmt.Fprintf(&b, "%-*s%s\n", textWidth-len(doc.Title), doc.Product, doc.Title)
	b.WriteString(rule)
	fmt.Fprintf(&b, "No. Invoice : #%s\n", doc.Number)
	fmt.Fprintf(&b, "Tanggal     : %s\n", doc.IssueDate)
	fmt.Fprintf(&b, "Status      : %s\n", doc.Status)
	b.WriteString(thin)
	b.WriteString("Ditagihkan kepada:\n")
	fmt.Fprintf(&b, "  %s\n  %s\n  %s\n", doc.BillTo.Name, doc.BillTo.Institution, doc.BillTo.Phone)
	b.WriteString(thin)
	for _, it := range doc.Items {
		fmt.Fprintf(&b, "%s\n", it.Description)
		fmt.Fprintf(&b, "  Domain : %s\n", it.Domain)
		fmt.Fprintf(&b, "  Durasi : %s\n", it.Period)
		fmt.Fprintf(&b, "%*s\n", textWidth, it.Amount)
	}
	b.WriteString(thin)
	fmt.Fprintf(&b, "%-10s%*s\n", "TOTAL", textWidth-10, doc.Total)
	b.WriteString(thin)
	b.WriteString("Pembayaran:\n")
	for _, m := range doc.Payment {
		fmt.Fprintf(&b, "  %s %s %s a.n. %s\n", m.Kind, m.Name, m.Account, m.Holder)
	}
	b.WriteString(rule)
	b.WriteString(doc.Footer + "\n")
	return b.Bytes()
}

// RenderPDF выводит счёт в PDF. Даты создания и изменения документа
// равны дате счёта, поэтому одинаковый вход даёт одинаковые байты.
func RenderPDF(doc Document) ([]byte, error) {
	const op = "invoice.RenderPDF"

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(doc.IssuedAt)
	pdf.SetModificationDate(doc.IssuedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(fmt.Sprintf("Invoice #%s", doc.Number), true)
	pdf.SetAuthor(doc.Product, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(95, 12, tr(doc.Product), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 12, tr(doc.Title), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(190, 6, tr("#"+doc.Number), "", 1, "R", false, 0, "")
	pdf.CellFormat(190, 6, tr("Tanggal: "+doc.IssueDate), "", 1, "R", false, 0, "")
	pdf.CellFormat(190, 6, tr("Status: "+doc.Status), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(190, 7, tr("Ditagihkan kepada"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{doc.BillTo.Name, doc.BillTo.Institution, doc.BillTo.Phone} {
		pdf.CellFormat(190, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(80, 8, tr("Deskripsi"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(55, 8, tr("Domain"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, tr("Durasi"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("Jumlah"), "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, it := range doc.Items {
		pdf.CellFormat(80, 8, tr(it.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 8, tr(it.Domain), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, tr(it.Period), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, tr(it.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(155, 9, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 9, tr(doc.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(190, 7, tr("Instruksi Pembayaran"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range doc.Payment {
		line := fmt.Sprintf("%s %s: %s a.n. %s", m.Kind, m.Name, m.Account, m.Holder)
		pdf.CellFormat(190, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(190, 6, tr(doc.Footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
