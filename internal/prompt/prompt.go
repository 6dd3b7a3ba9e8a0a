// Package prompt renders an analysis snapshot as pt-BR context for the first
// turn of a chat.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sells-group/crm-assistant/internal/model"
)

// Build renders a as context text followed by the user's question. Sections
// for empty collections are left out.
func Build(a *model.Analysis, userName, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CONTEXTO DO SISTEMA (%s a %s):\n", a.Range.Start, a.Range.End)
	b.WriteString("Use os dados abaixo, extraídos do CRM, como base para a resposta.\n\n")

	writeSummary(&b, a, userName)
	writeFunnels(&b, a)
	writeLeads(&b, a)
	writeActivities(&b, a)
	writeOrders(&b, a)

	b.WriteString("PERGUNTA DO USUÁRIO:\n")
	b.WriteString(question)
	return b.String()
}

func writeSummary(b *strings.Builder, a *model.Analysis, userName string) {
	fmt.Fprintf(b, "👤 Usuário: %s\n", userName)
	b.WriteString("📊 Resumo Geral:\n")
	fmt.Fprintf(b, "- %d leads no pipeline\n", len(a.Leads))
	fmt.Fprintf(b, "- %d atividades registradas\n", len(a.Activities))
	fmt.Fprintf(b, "- %d pedidos fechados (R$ %s)\n", len(a.Orders), Currency(a.OrdersTotal()))
	fmt.Fprintf(b, "- %d clientes\n\n", len(a.Customers))
}

func writeFunnels(b *strings.Builder, a *model.Analysis) {
	if len(a.Funnels) == 0 {
		return
	}
	b.WriteString("🎯 FUNIS E ESTÁGIOS:\n")
	for _, f := range a.Funnels {
		stages := a.StagesForFunnel(f.ID)
		fmt.Fprintf(b, "• %s (%d estágios, %d leads)\n", f.Name, len(stages), a.LeadsInFunnel(f.ID))
		for _, s := range stages {
			fmt.Fprintf(b, "  - %s: %d leads\n", s.Name, a.LeadsInStage(s.ID))
		}
	}
	b.WriteString("\n")
}

func writeLeads(b *strings.Builder, a *model.Analysis) {
	if len(a.Leads) == 0 {
		return
	}
	fmt.Fprintf(b, "💰 LEADS NO PIPELINE (%d):\n", len(a.Leads))
	for i, l := range a.Leads {
		if i > 0 {
			b.WriteString("\n")
		}
		status := l.Status
		if status == "" {
			status = "EM_ANDAMENTO"
		}
		stage := "Sem estágio"
		if s, ok := a.StageByID(l.StageID); ok && s.Name != "" {
			stage = s.Name
		}
		funnel := "Sem funil"
		if f, ok := a.FunnelByID(l.FunnelID); ok && f.Name != "" {
			funnel = f.Name
		}

		fmt.Fprintf(b, "• %s - R$ %s\n", l.Name, Currency(l.Value))
		fmt.Fprintf(b, "  Status: %s\n", status)
		fmt.Fprintf(b, "  Estágio: %s (Funil: %s)\n", stage, funnel)
		if products := a.ProductsForLead(l.ID); len(products) > 0 {
			names := make([]string, 0, len(products))
			for _, p := range products {
				names = append(names, p.Description)
			}
			fmt.Fprintf(b, "  Produtos: %s\n", strings.Join(names, ", "))
		}
	}
	b.WriteString("\n")
}

func writeActivities(b *strings.Builder, a *model.Analysis) {
	if len(a.Activities) == 0 {
		return
	}
	fmt.Fprintf(b, "📋 ATIVIDADES (%d):\n", len(a.Activities))
	for i, act := range a.Activities {
		if i > 0 {
			b.WriteString("\n")
		}
		status := act.Status
		if status == "" {
			status = model.ActivityAwaiting
		}
		lead := "Sem lead associado"
		if l, ok := a.LeadByID(act.LeadID); ok {
			lead = "Lead: " + l.Name
		}

		fmt.Fprintf(b, "• %s\n", activitySummary(act.Description))
		fmt.Fprintf(b, "  Tipo: %s | Status: %s | Data: %s\n", act.Type, status, ActivityDate(act.StartsAt, act.ScheduledAt))
		fmt.Fprintf(b, "  %s\n", lead)
	}
	b.WriteString("\n")
}

func writeOrders(b *strings.Builder, a *model.Analysis) {
	if len(a.Orders) == 0 {
		return
	}
	fmt.Fprintf(b, "💵 PEDIDOS FECHADOS (%d - Total: R$ %s):\n", len(a.Orders), Currency(a.OrdersTotal()))
	for i, o := range a.Orders {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "• Pedido %s - %s\n", o.ID, o.CustomerName)
		fmt.Fprintf(b, "  Valor: R$ %s\n", Currency(o.Total))
		fmt.Fprintf(b, "  Data: %s\n", o.Date)
	}
	b.WriteString("\n")
}
