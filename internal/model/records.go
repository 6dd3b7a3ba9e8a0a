package model

import "github.com/sells-group/crm-assistant/pkg/sankhya"

// Field lists requested from the gateway, in wire order.
var (
	FunnelFields   = []string{"CODFUNIL", "NOME", "DESCRICAO", "COR", "ATIVO", "DATA_CRIACAO", "DATA_ATUALIZACAO"}
	StageFields    = []string{"CODESTAGIO", "CODFUNIL", "NOME", "ORDEM", "COR", "ATIVO"}
	OrderFields    = []string{"NUNOTA", "CODPARC", "NOMEPARC", "DTNEG", "VLRNOTA", "CODVEND", "OBSERVACAO"}
	ProductFields  = []string{"CODPROD", "DESCRPROD", "ATIVO"}
	CustomerFields = []string{"CODPARC", "NOMEPARC", "CGC_CPF", "CLIENTE", "ATIVO"}
)

var LeadFields = []string{
	"CODLEAD", "NOME", "DESCRICAO", "VALOR", "CODESTAGIO", "DATA_VENCIMENTO", "TIPO_TAG",
	"COR_TAG", "CODPARC", "CODFUNIL", "CODUSUARIO", "ATIVO", "DATA_CRIACAO",
	"DATA_ATUALIZACAO", "STATUS_LEAD", "MOTIVO_PERDA", "DATA_CONCLUSAO",
}

var ActivityFields = []string{
	"CODATIVIDADE", "CODLEAD", "TIPO", "DESCRICAO", "DATA_HORA", "DATA_INICIO", "DATA_FIM",
	"CODUSUARIO", "DADOS_COMPLEMENTARES", "COR", "ORDEM", "ATIVO", "STATUS",
}

var LeadProductFields = []string{
	"CODITEM", "CODLEAD", "CODPROD", "DESCRPROD", "QUANTIDADE", "VLRUNIT", "VLRTOTAL",
	"ATIVO", "DATA_INCLUSAO",
}

// Lead is a sales opportunity (AD_LEADS).
type Lead struct {
	ID          string  `json:"CODLEAD"`
	Name        string  `json:"NOME,omitempty"`
	Description string  `json:"DESCRICAO,omitempty"`
	Value       float64 `json:"VALOR"`
	StageID     string  `json:"CODESTAGIO,omitempty"`
	DueDate     string  `json:"DATA_VENCIMENTO,omitempty"`
	TagType     string  `json:"TIPO_TAG,omitempty"`
	TagColor    string  `json:"COR_TAG,omitempty"`
	PartnerID   string  `json:"CODPARC,omitempty"`
	FunnelID    string  `json:"CODFUNIL,omitempty"`
	OwnerID     string  `json:"CODUSUARIO,omitempty"`
	Active      string  `json:"ATIVO,omitempty"`
	CreatedAt   string  `json:"DATA_CRIACAO,omitempty"`
	UpdatedAt   string  `json:"DATA_ATUALIZACAO,omitempty"`
	Status      string  `json:"STATUS_LEAD,omitempty"`
	LossReason  string  `json:"MOTIVO_PERDA,omitempty"`
	ClosedAt    string  `json:"DATA_CONCLUSAO,omitempty"`
}

// LeadFromRecord reads a mapped AD_LEADS row.
func LeadFromRecord(r sankhya.Record) Lead {
	return Lead{
		ID:          r["CODLEAD"],
		Name:        r["NOME"],
		Description: r["DESCRICAO"],
		Value:       ParseAmount(r["VALOR"]),
		StageID:     r["CODESTAGIO"],
		DueDate:     r["DATA_VENCIMENTO"],
		TagType:     r["TIPO_TAG"],
		TagColor:    r["COR_TAG"],
		PartnerID:   r["CODPARC"],
		FunnelID:    r["CODFUNIL"],
		OwnerID:     r["CODUSUARIO"],
		Active:      r["ATIVO"],
		CreatedAt:   r["DATA_CRIACAO"],
		UpdatedAt:   r["DATA_ATUALIZACAO"],
		Status:      r["STATUS_LEAD"],
		LossReason:  r["MOTIVO_PERDA"],
		ClosedAt:    r["DATA_CONCLUSAO"],
	}
}

// Activity statuses seen in AD_ADLEADSATIVIDADES.STATUS.
const (
	ActivityAwaiting = "AGUARDANDO"
	ActivityLate     = "ATRASADO"
	ActivityDone     = "REALIZADO"
)

// Activity is an action linked to a lead (AD_ADLEADSATIVIDADES).
type Activity struct {
	ID          string `json:"CODATIVIDADE"`
	LeadID      string `json:"CODLEAD,omitempty"`
	Type        string `json:"TIPO,omitempty"`
	Description string `json:"DESCRICAO,omitempty"`
	ScheduledAt string `json:"DATA_HORA,omitempty"`
	StartsAt    string `json:"DATA_INICIO,omitempty"`
	EndsAt      string `json:"DATA_FIM,omitempty"`
	OwnerID     string `json:"CODUSUARIO,omitempty"`
	Extra       string `json:"DADOS_COMPLEMENTARES,omitempty"`
	Color       string `json:"COR,omitempty"`
	Order       string `json:"ORDEM,omitempty"`
	Active      string `json:"ATIVO,omitempty"`
	Status      string `json:"STATUS,omitempty"`
}

// ActivityFromRecord reads a mapped AD_ADLEADSATIVIDADES row.
func ActivityFromRecord(r sankhya.Record) Activity {
	return Activity{
		ID:          r["CODATIVIDADE"],
		LeadID:      r["CODLEAD"],
		Type:        r["TIPO"],
		Description: r["DESCRICAO"],
		ScheduledAt: r["DATA_HORA"],
		StartsAt:    r["DATA_INICIO"],
		EndsAt:      r["DATA_FIM"],
		OwnerID:     r["CODUSUARIO"],
		Extra:       r["DADOS_COMPLEMENTARES"],
		Color:       r["COR"],
		Order:       r["ORDEM"],
		Active:      r["ATIVO"],
		Status:      r["STATUS"],
	}
}

// Funnel is a named pipeline (AD_FUNIS).
type Funnel struct {
	ID          string `json:"CODFUNIL"`
	Name        string `json:"NOME,omitempty"`
	Description string `json:"DESCRICAO,omitempty"`
	Color       string `json:"COR,omitempty"`
	Active      string `json:"ATIVO,omitempty"`
	CreatedAt   string `json:"DATA_CRIACAO,omitempty"`
	UpdatedAt   string `json:"DATA_ATUALIZACAO,omitempty"`
}

// FunnelFromRecord reads a mapped AD_FUNIS row.
func FunnelFromRecord(r sankhya.Record) Funnel {
	return Funnel{
		ID:          r["CODFUNIL"],
		Name:        r["NOME"],
		Description: r["DESCRICAO"],
		Color:       r["COR"],
		Active:      r["ATIVO"],
		CreatedAt:   r["DATA_CRIACAO"],
		UpdatedAt:   r["DATA_ATUALIZACAO"],
	}
}

// Stage is a phase inside a funnel (AD_FUNISESTAGIOS).
type Stage struct {
	ID       string `json:"CODESTAGIO"`
	FunnelID string `json:"CODFUNIL,omitempty"`
	Name     string `json:"NOME,omitempty"`
	Position string `json:"ORDEM,omitempty"`
	Color    string `json:"COR,omitempty"`
	Active   string `json:"ATIVO,omitempty"`
}

// StageFromRecord reads a mapped AD_FUNISESTAGIOS row.
func StageFromRecord(r sankhya.Record) Stage {
	return Stage{
		ID:       r["CODESTAGIO"],
		FunnelID: r["CODFUNIL"],
		Name:     r["NOME"],
		Position: r["ORDEM"],
		Color:    r["COR"],
		Active:   r["ATIVO"],
	}
}

// Order is a closed sales order header (CabecalhoNota, TIPMOV = 'P').
type Order struct {
	ID           string  `json:"NUNOTA"`
	CustomerID   string  `json:"CODPARC,omitempty"`
	CustomerName string  `json:"NOMEPARC,omitempty"`
	Date         string  `json:"DTNEG,omitempty"`
	Total        float64 `json:"VLRNOTA"`
	SellerID     string  `json:"CODVEND,omitempty"`
	Notes        string  `json:"OBSERVACAO,omitempty"`
}

// OrderFromRecord reads a mapped CabecalhoNota row.
func OrderFromRecord(r sankhya.Record) Order {
	return Order{
		ID:           r["NUNOTA"],
		CustomerID:   r["CODPARC"],
		CustomerName: r["NOMEPARC"],
		Date:         r["DTNEG"],
		Total:        ParseAmount(r["VLRNOTA"]),
		SellerID:     r["CODVEND"],
		Notes:        r["OBSERVACAO"],
	}
}

// Product is a catalog item (Produto).
type Product struct {
	ID          string `json:"CODPROD"`
	Description string `json:"DESCRPROD,omitempty"`
	Active      string `json:"ATIVO,omitempty"`
}

// ProductFromRecord reads a mapped Produto row.
func ProductFromRecord(r sankhya.Record) Product {
	return Product{ID: r["CODPROD"], Description: r["DESCRPROD"], Active: r["ATIVO"]}
}

// Customer is a business partner flagged as a customer (Parceiro).
type Customer struct {
	ID       string `json:"CODPARC"`
	Name     string `json:"NOMEPARC,omitempty"`
	TaxID    string `json:"CGC_CPF,omitempty"`
	Customer string `json:"CLIENTE,omitempty"`
	Active   string `json:"ATIVO,omitempty"`
}

// CustomerFromRecord reads a mapped Parceiro row.
func CustomerFromRecord(r sankhya.Record) Customer {
	return Customer{
		ID:       r["CODPARC"],
		Name:     r["NOMEPARC"],
		TaxID:    r["CGC_CPF"],
		Customer: r["CLIENTE"],
		Active:   r["ATIVO"],
	}
}

// LeadProduct is a product line attached to a lead (AD_ADLEADSPRODUTOS).
type LeadProduct struct {
	ID          string  `json:"CODITEM"`
	LeadID      string  `json:"CODLEAD,omitempty"`
	ProductID   string  `json:"CODPROD,omitempty"`
	Description string  `json:"DESCRPROD,omitempty"`
	Quantity    float64 `json:"QUANTIDADE"`
	UnitPrice   float64 `json:"VLRUNIT"`
	Total       float64 `json:"VLRTOTAL"`
	Active      string  `json:"ATIVO,omitempty"`
	AddedAt     string  `json:"DATA_INCLUSAO,omitempty"`
}

// LeadProductFromRecord reads a mapped AD_ADLEADSPRODUTOS row.
func LeadProductFromRecord(r sankhya.Record) LeadProduct {
	return LeadProduct{
		ID:          r["CODITEM"],
		LeadID:      r["CODLEAD"],
		ProductID:   r["CODPROD"],
		Description: r["DESCRPROD"],
		Quantity:    ParseAmount(r["QUANTIDADE"]),
		UnitPrice:   ParseAmount(r["VLRUNIT"]),
		Total:       ParseAmount(r["VLRTOTAL"]),
		Active:      r["ATIVO"],
		AddedAt:     r["DATA_INCLUSAO"],
	}
}

// MapRecords applies fn to every record.
func MapRecords[T any](recs []sankhya.Record, fn func(sankhya.Record) T) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, fn(r))
	}
	return out
}
