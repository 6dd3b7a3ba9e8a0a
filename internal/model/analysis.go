package model

import "time"

// Analysis is one CRM snapshot for a user and date range. Collections are
// never nil. Treat a returned Analysis as read-only.
type Analysis struct {
	Leads        []Lead        `json:"leads"`
	LeadProducts []LeadProduct `json:"produtosLeads"`
	Stages       []Stage       `json:"estagiosFunis"`
	Funnels      []Funnel      `json:"funis"`
	Activities   []Activity    `json:"atividades"`
	Orders       []Order       `json:"pedidos"`
	Products     []Product     `json:"produtos"`
	Customers    []Customer    `json:"clientes"`
	Range        DateRange     `json:"filtro"`
	GeneratedAt  time.Time     `json:"timestamp"`
}

// EmptyAnalysis returns an Analysis with every collection initialized.
func EmptyAnalysis(r DateRange) *Analysis {
	a := &Analysis{Range: r}
	a.Normalize()
	return a
}

// Normalize replaces nil collections with empty ones. Decoded payloads may
// carry null for an empty list.
func (a *Analysis) Normalize() {
	if a.Leads == nil {
		a.Leads = []Lead{}
	}
	if a.LeadProducts == nil {
		a.LeadProducts = []LeadProduct{}
	}
	if a.Stages == nil {
		a.Stages = []Stage{}
	}
	if a.Funnels == nil {
		a.Funnels = []Funnel{}
	}
	if a.Activities == nil {
		a.Activities = []Activity{}
	}
	if a.Orders == nil {
		a.Orders = []Order{}
	}
	if a.Products == nil {
		a.Products = []Product{}
	}
	if a.Customers == nil {
		a.Customers = []Customer{}
	}
}

// OrdersTotal sums the order values.
func (a *Analysis) OrdersTotal() float64 {
	var sum float64
	for _, o := range a.Orders {
		sum += o.Total
	}
	return sum
}

// LeadsValue sums the lead values.
func (a *Analysis) LeadsValue() float64 {
	var sum float64
	for _, l := range a.Leads {
		sum += l.Value
	}
	return sum
}

// StageByID returns the stage with the given id.
func (a *Analysis) StageByID(id string) (Stage, bool) {
	for _, s := range a.Stages {
		if id != "" && s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// FunnelByID returns the funnel with the given id.
func (a *Analysis) FunnelByID(id string) (Funnel, bool) {
	for _, f := range a.Funnels {
		if id != "" && f.ID == id {
			return f, true
		}
	}
	return Funnel{}, false
}

// LeadByID returns the lead with the given id.
func (a *Analysis) LeadByID(id string) (Lead, bool) {
	for _, l := range a.Leads {
		if id != "" && l.ID == id {
			return l, true
		}
	}
	return Lead{}, false
}

// StagesForFunnel returns the stages of a funnel in fetch order.
func (a *Analysis) StagesForFunnel(funnelID string) []Stage {
	var out []Stage
	for _, s := range a.Stages {
		if s.FunnelID == funnelID {
			out = append(out, s)
		}
	}
	return out
}

// LeadsInFunnel counts leads referencing the funnel.
func (a *Analysis) LeadsInFunnel(funnelID string) int {
	n := 0
	for _, l := range a.Leads {
		if l.FunnelID == funnelID {
			n++
		}
	}
	return n
}

// LeadsInStage counts leads referencing the stage.
func (a *Analysis) LeadsInStage(stageID string) int {
	n := 0
	for _, l := range a.Leads {
		if l.StageID == stageID {
			n++
		}
	}
	return n
}

// ProductsForLead returns the product lines attached to a lead.
func (a *Analysis) ProductsForLead(leadID string) []LeadProduct {
	var out []LeadProduct
	for _, p := range a.LeadProducts {
		if p.LeadID == leadID {
			out = append(out, p)
		}
	}
	return out
}
