package analysis

import (
	"time"

	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/pkg/sankhya"
)

// Root entities queried for a snapshot.
const (
	entityLeads        = "AD_LEADS"
	entityActivities   = "AD_ADLEADSATIVIDADES"
	entityFunnels      = "AD_FUNIS"
	entityStages       = "AD_FUNISESTAGIOS"
	entityOrders       = "CabecalhoNota"
	entityProducts     = "Produto"
	entityCustomers    = "Parceiro"
	entityLeadProducts = "AD_ADLEADSPRODUTOS"
)

var active = sankhya.Eq("ATIVO", "S")

// leadsQuery scopes leads by creation date, and by owner for non-admins.
func leadsQuery(from, to time.Time, userID int64, isAdmin bool) sankhya.Query {
	crit := sankhya.And(sankhya.Between("DATA_CRIACAO", from, to), active)
	if !isAdmin {
		crit = sankhya.And(crit, sankhya.EqInt("CODUSUARIO", userID))
	}
	return sankhya.Query{
		Entity:              entityLeads,
		Fields:              model.LeadFields,
		Criteria:            crit,
		IncludePresentation: true,
	}
}

// activitiesQuery keeps undated activities alongside the ones in range.
func activitiesQuery(from, to time.Time) sankhya.Query {
	return sankhya.Query{
		Entity: entityActivities,
		Fields: model.ActivityFields,
		Criteria: sankhya.And(active, sankhya.Or(
			sankhya.Between("DATA_HORA", from, to),
			sankhya.IsNull("DATA_HORA"),
		)),
		IncludePresentation: true,
	}
}

func funnelsQuery() sankhya.Query {
	return sankhya.Query{Entity: entityFunnels, Fields: model.FunnelFields, Criteria: active, IncludePresentation: true}
}

func stagesQuery() sankhya.Query {
	return sankhya.Query{Entity: entityStages, Fields: model.StageFields, Criteria: active, IncludePresentation: true}
}

// ordersQuery selects sales orders (TIPMOV 'P') negotiated in range. DTNEG is
// a typed date column, so the bounds go through TO_DATE.
func ordersQuery(from, to time.Time) sankhya.Query {
	return sankhya.Query{
		Entity:   entityOrders,
		Fields:   model.OrderFields,
		Criteria: sankhya.And(sankhya.Eq("TIPMOV", "P"), sankhya.BetweenDates("DTNEG", from, to)),
	}
}

func productsQuery() sankhya.Query {
	return sankhya.Query{Entity: entityProducts, Fields: model.ProductFields, Criteria: active}
}

func customersQuery() sankhya.Query {
	return sankhya.Query{
		Entity:   entityCustomers,
		Fields:   model.CustomerFields,
		Criteria: sankhya.And(sankhya.Eq("CLIENTE", "S"), active),
	}
}

// leadProductsQuery restricts product lines to the given leads. ok is false
// when no id is a valid integer.
func leadProductsQuery(leads []model.Lead) (q sankhya.Query, ok bool) {
	ids := make([]string, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.ID)
	}
	in, ok := sankhya.InInts("CODLEAD", ids)
	if !ok {
		return sankhya.Query{}, false
	}
	return sankhya.Query{
		Entity:              entityLeadProducts,
		Fields:              model.LeadProductFields,
		Criteria:            sankhya.And(in, active),
		IncludePresentation: true,
	}, true
}
