package notification

import (
	"fmt"
	"strings"

	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

func financeDueMessage(e *finance.Entry) string {
	return strings.Join([]string{
		"📌 Conta a pagar vencida/pendente",
		"Empresa: " + e.Company,
		"Valor: " + valueobject.FormatBRL(e.Amount),
		"Venc.: " + e.DueDate.Format(valueobject.DateLayout),
		"ID: " + e.ID.String(),
	}, "\n")
}

func dueSoonMessage(c *promissory.ReminderCandidate, leadDays int) string {
	inst := &c.Installment
	lines := []string{
		fmt.Sprintf("⏰ Parcela vence em %d dias", leadDays),
		"Contrato: " + c.NotePublicID,
		fmt.Sprintf("Parcela: %d", inst.Number),
		fmt.Sprintf("Cliente: %s (%s)", c.ClientName, c.ClientPhone),
	}
	if c.ProductLabel != "" {
		lines = append(lines, "Produto: "+c.ProductLabel)
	}
	return strings.Join(append(lines,
		"Valor: "+valueobject.FormatBRL(inst.Amount),
		"Venc.: "+inst.DueDate.Format(valueobject.DateLayout),
	), "\n")
}

func overdueMessage(c *promissory.ReminderCandidate) string {
	inst := &c.Installment
	return strings.Join([]string{
		"Parcela vencida",
		"Contrato: " + c.NotePublicID,
		fmt.Sprintf("Parcela: %d", inst.Number),
		fmt.Sprintf("Cliente: %s (%s)", c.ClientName, c.ClientPhone),
		"Venc.: " + inst.DueDate.Format(valueobject.DateLayout),
		"Valor: " + valueobject.FormatBRL(inst.Amount),
		"InstallmentID: " + inst.ID.String(),
	}, "\n")
}

func offerCaption(p *catalog.Product, footer string) string {
	lines := []string{"🏍️ " + p.DisplayLabel()}
	if p.Color != "" {
		lines = append(lines, "Cor: "+p.Color)
	}
	if p.Km != nil {
		lines = append(lines, fmt.Sprintf("Km: %d", *p.Km))
	}
	lines = append(lines, "Por "+valueobject.FormatBRL(p.SalePrice))
	if footer != "" {
		lines = append(lines, "", footer)
	}
	return strings.Join(lines, "\n")
}
