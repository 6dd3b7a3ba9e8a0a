package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/pkg/sankhya"
)

func TestQueryCriteria(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		q            sankhya.Query
		entity       string
		criteria     string
		presentation bool
	}{
		{
			name:         "activities",
			q:            activitiesQuery(from, to),
			entity:       "AD_ADLEADSATIVIDADES",
			criteria:     "ATIVO = 'S' AND (DATA_HORA BETWEEN '01/01/2024' AND '31/03/2024' OR DATA_HORA IS NULL)",
			presentation: true,
		},
		{name: "funnels", q: funnelsQuery(), entity: "AD_FUNIS", criteria: "ATIVO = 'S'", presentation: true},
		{name: "stages", q: stagesQuery(), entity: "AD_FUNISESTAGIOS", criteria: "ATIVO = 'S'", presentation: true},
		{
			name:     "orders",
			q:        ordersQuery(from, to),
			entity:   "CabecalhoNota",
			criteria: "TIPMOV = 'P' AND DTNEG BETWEEN TO_DATE('01/01/2024', 'DD/MM/YYYY') AND TO_DATE('31/03/2024', 'DD/MM/YYYY')",
		},
		{name: "products", q: productsQuery(), entity: "Produto", criteria: "ATIVO = 'S'"},
		{name: "customers", q: customersQuery(), entity: "Parceiro", criteria: "CLIENTE = 'S' AND ATIVO = 'S'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.entity, tt.q.Entity)
			assert.Equal(t, tt.criteria, tt.q.Criteria.String())
			assert.Equal(t, tt.presentation, tt.q.IncludePresentation)
			assert.NotEmpty(t, tt.q.Fields)
		})
	}
}

func TestLeadsQuery_Fields(t *testing.T) {
	q := leadsQuery(time.Now(), time.Now(), 1, true)
	assert.Equal(t, model.LeadFields, q.Fields)
	assert.True(t, q.IncludePresentation)
}

func TestLeadProductsQuery_SkipsNonNumericIDs(t *testing.T) {
	q, ok := leadProductsQuery([]model.Lead{{ID: "1"}, {ID: "x'); DROP"}, {ID: "3"}})
	assert.True(t, ok)
	assert.Equal(t, "CODLEAD IN (1,3) AND ATIVO = 'S'", q.Criteria.String())
	assert.Equal(t, model.LeadProductFields, q.Fields)

	_, ok = leadProductsQuery([]model.Lead{{ID: ""}})
	assert.False(t, ok)
}
