// Package export writes an analysis snapshot to an xlsx workbook.
package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/crm-assistant/internal/model"
)

// Sheet is one worksheet. Cell values are strings or float64.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

type column[T any] struct {
	header string
	value  func(T) any
}

func table[T any](name string, items []T, cols []column[T]) Sheet {
	s := Sheet{Name: name, Header: make([]string, len(cols)), Rows: make([][]any, 0, len(items))}
	for i, c := range cols {
		s.Header[i] = c.header
	}
	for _, item := range items {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = c.value(item)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Sheets lays out a as a summary sheet followed by one sheet per collection.
func Sheets(a *model.Analysis) []Sheet {
	summary := Sheet{
		Name:   "Resumo",
		Header: []string{"Indicador", "Valor"},
		Rows: [][]any{
			{"Início", a.Range.Start},
			{"Fim", a.Range.End},
			{"Gerado em", a.GeneratedAt.UTC().Format(time.RFC3339)},
			{"Leads", float64(len(a.Leads))},
			{"Valor em leads", a.LeadsValue()},
			{"Atividades", float64(len(a.Activities))},
			{"Pedidos", float64(len(a.Orders))},
			{"Total em pedidos", a.OrdersTotal()},
			{"Clientes", float64(len(a.Customers))},
		},
	}

	return []Sheet{
		summary,
		table("Leads", a.Leads, []column[model.Lead]{
			{"Código", func(l model.Lead) any { return l.ID }},
			{"Nome", func(l model.Lead) any { return l.Name }},
			{"Valor", func(l model.Lead) any { return l.Value }},
			{"Status", func(l model.Lead) any { return l.Status }},
			{"Estágio", func(l model.Lead) any { return stageName(a, l.StageID) }},
			{"Funil", func(l model.Lead) any { return funnelName(a, l.FunnelID) }},
			{"Vencimento", func(l model.Lead) any { return l.DueDate }},
			{"Motivo da perda", func(l model.Lead) any { return l.LossReason }},
		}),
		table("Atividades", a.Activities, []column[model.Activity]{
			{"Código", func(x model.Activity) any { return x.ID }},
			{"Lead", func(x model.Activity) any { return x.LeadID }},
			{"Tipo", func(x model.Activity) any { return x.Type }},
			{"Status", func(x model.Activity) any { return x.Status }},
			{"Descrição", func(x model.Activity) any { return x.Description }},
			{"Início", func(x model.Activity) any { return x.StartsAt }},
			{"Fim", func(x model.Activity) any { return x.EndsAt }},
		}),
		table("Pedidos", a.Orders, []column[model.Order]{
			{"Nota", func(o model.Order) any { return o.ID }},
			{"Cliente", func(o model.Order) any { return o.CustomerName }},
			{"Data", func(o model.Order) any { return o.Date }},
			{"Valor", func(o model.Order) any { return o.Total }},
			{"Vendedor", func(o model.Order) any { return o.SellerID }},
		}),
		table("Funis", a.Funnels, []column[model.Funnel]{
			{"Código", func(f model.Funnel) any { return f.ID }},
			{"Nome", func(f model.Funnel) any { return f.Name }},
			{"Descrição", func(f model.Funnel) any { return f.Description }},
		}),
		table("Estágios", a.Stages, []column[model.Stage]{
			{"Código", func(s model.Stage) any { return s.ID }},
			{"Funil", func(s model.Stage) any { return s.FunnelID }},
			{"Nome", func(s model.Stage) any { return s.Name }},
			{"Ordem", func(s model.Stage) any { return s.Position }},
		}),
		table("Produtos", a.Products, []column[model.Product]{
			{"Código", func(p model.Product) any { return p.ID }},
			{"Descrição", func(p model.Product) any { return p.Description }},
		}),
		table("Clientes", a.Customers, []column[model.Customer]{
			{"Código", func(c model.Customer) any { return c.ID }},
			{"Nome", func(c model.Customer) any { return c.Name }},
			{"CPF/CNPJ", func(c model.Customer) any { return c.TaxID }},
		}),
		table("Produtos dos leads", a.LeadProducts, []column[model.LeadProduct]{
			{"Lead", func(p model.LeadProduct) any { return p.LeadID }},
			{"Produto", func(p model.LeadProduct) any { return p.Description }},
			{"Quantidade", func(p model.LeadProduct) any { return p.Quantity }},
			{"Valor unitário", func(p model.LeadProduct) any { return p.UnitPrice }},
			{"Total", func(p model.LeadProduct) any { return p.Total }},
		}),
	}
}

func stageName(a *model.Analysis, id string) string {
	if s, ok := a.StageByID(id); ok {
		return s.Name
	}
	return ""
}

func funnelName(a *model.Analysis, id string) string {
	if f, ok := a.FunnelByID(id); ok {
		return f.Name
	}
	return ""
}

// WriteXLSX saves a to path.
func WriteXLSX(a *model.Analysis, path string) error {
	f := xlsx.NewFile()
	for _, s := range Sheets(a) {
		sheet, err := f.AddSheet(s.Name)
		if err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %s", s.Name)
		}
		header := sheet.AddRow()
		for _, h := range s.Header {
			header.AddCell().SetString(h)
		}
		for _, values := range s.Rows {
			row := sheet.AddRow()
			for _, v := range values {
				cell := row.AddCell()
				switch v := v.(type) {
				case float64:
					cell.SetFloat(v)
				case string:
					cell.SetString(v)
				}
			}
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save file")
	}
	return nil
}
