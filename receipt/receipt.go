/*
Package receipt builds printable documents for payments and loan statements.

PURPOSE:
  Turns engine records into plain text documents: a payment receipt and a
  loan account statement with a partial schedule. The documents are line
  oriented so callers can print them, attach them, or feed them to a PDF
  layout later.

FAILURE POLICY:
  Document generation is a side effect of an already-completed operation.
  A render problem must never fail the payment or the statement request;
  Render reports it separately so the caller can log and move on.
*/
package receipt

import (
	"fmt"
	"strings"

	"github.com/argsoja/loanbook/engine"
	"github.com/shopspring/decimal"
)

// CompanyName heads every generated document.
const CompanyName = "ARGSOJA"

// statementScheduleRows caps the schedule excerpt on a statement.
const statementScheduleRows = 20

// Document is a rendered text document.
type Document struct {
	Title string
	Lines []string
}

// Render flattens the document to text. The error return exists for
// callers that treat rendering as fallible; a nil document is the only
// failure here.
func (d *Document) Render() (string, error) {
	if d == nil {
		return "", fmt.Errorf("no document to render")
	}
	var b strings.Builder
	b.WriteString(d.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(d.Title)))
	b.WriteString("\n")
	for _, line := range d.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// PaymentReceipt builds the receipt for a recorded payment.
func PaymentReceipt(p engine.Payment, l engine.Loan, c engine.Customer) Document {
	doc := Document{
		Title: CompanyName + " - Recibo de Pago",
		Lines: []string{
			fmt.Sprintf("Fecha: %s    Recibo ID: %d", p.Date, p.ID),
			fmt.Sprintf("Cliente: %s    Doc: %s", c.Name, c.Document),
			fmt.Sprintf("Préstamo #%d | Frecuencia: %s | Tasa mensual: %s", l.ID, l.Frequency, ratePercent(l.MonthlyRate)),
			"",
			fmt.Sprintf("Monto pagado: $%s", money(p.Amount)),
			fmt.Sprintf("Método: %s", p.Method),
		},
	}
	if p.Note != "" {
		doc.Lines = append(doc.Lines, fmt.Sprintf("Nota: %s", p.Note))
	}
	doc.Lines = append(doc.Lines, "", footer)
	return doc
}

// Statement builds the account statement for a loan, with a partial
// schedule excerpt.
func Statement(l engine.Loan, c engine.Customer, schedule []engine.Installment, totals engine.Totals) Document {
	doc := Document{
		Title: CompanyName + " - Estado de Cuenta",
		Lines: []string{
			fmt.Sprintf("Cliente: %s    Doc: %s", c.Name, c.Document),
			fmt.Sprintf("Préstamo #%d | Inicio: %s | Plazo: %d mes(es) | Frecuencia: %s",
				l.ID, l.StartDate, l.TermMonths, l.Frequency),
			fmt.Sprintf("Principal: $%s | Tasa mensual: %s", money(l.Principal), ratePercent(l.MonthlyRate)),
			"",
			fmt.Sprintf("Resumen: Cuota: $%s  |  Total a pagar: $%s  |  Saldo: $%s",
				money(totals.QuotaPerPeriod), money(totals.TotalDue), money(totals.Balance)),
			"",
			"Cronograma (parcial):",
			fmt.Sprintf("%-4s %-12s %12s %12s %12s %12s", "N", "Fecha", "Cuota", "Interés", "Capital", "Cap. Pend."),
		},
	}
	for i, inst := range schedule {
		if i >= statementScheduleRows {
			doc.Lines = append(doc.Lines, fmt.Sprintf("... %d cuota(s) más", len(schedule)-statementScheduleRows))
			break
		}
		doc.Lines = append(doc.Lines, fmt.Sprintf("%-4d %-12s %12s %12s %12s %12s",
			inst.Seq, inst.DueDate,
			money(inst.Total), money(inst.Interest), money(inst.Principal), money(inst.RemainingPrincipal)))
	}
	doc.Lines = append(doc.Lines, "", footer)
	return doc
}

const footer = "Documento generado automáticamente desde ARGSOJA."

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func ratePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
