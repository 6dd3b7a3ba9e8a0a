package sankhya

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntities(t *testing.T, raw string) *Entities {
	t.Helper()
	var e Entities
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	return &e
}

func TestMapEntities_ArrayOfEntities(t *testing.T) {
	e := decodeEntities(t, `{
		"metadata": {"fields": {"field": [{"name": "CODLEAD"}, {"name": "NOME"}]}},
		"entity": [
			{"f0": {"$": "1"}, "f1": {"$": "Acme"}},
			{"f0": {"$": "2"}, "f1": {"$": "Globex"}}
		]
	}`)

	got := MapEntities(e)
	assert.Equal(t, []Record{
		{"CODLEAD": "1", "NOME": "Acme"},
		{"CODLEAD": "2", "NOME": "Globex"},
	}, got)
}

func TestMapEntities_SingleEntityObject(t *testing.T) {
	e := decodeEntities(t, `{
		"metadata": {"fields": {"field": [{"name": "CODLEAD"}]}},
		"entity": {"f0": {"$": "7"}}
	}`)

	assert.Equal(t, []Record{{"CODLEAD": "7"}}, MapEntities(e))
}

func TestMapEntities_SingleFieldObject(t *testing.T) {
	e := decodeEntities(t, `{
		"metadata": {"fields": {"field": {"name": "CODPROD"}}},
		"entity": [{"f0": {"$": "10"}}]
	}`)

	assert.Equal(t, []Record{{"CODPROD": "10"}}, MapEntities(e))
}

func TestMapEntities_MissingPositionOmitsKey(t *testing.T) {
	e := decodeEntities(t, `{
		"metadata": {"fields": {"field": [{"name": "A"}, {"name": "B"}, {"name": "C"}]}},
		"entity": {"f0": {"$": "x"}, "f2": {}, "f9": {"$": "stray"}}
	}`)

	got := MapEntities(e)
	require.Len(t, got, 1)
	assert.Equal(t, Record{"A": "x"}, got[0])
}

func TestMapEntities_NumericAndEmptyValues(t *testing.T) {
	e := decodeEntities(t, `{
		"metadata": {"fields": {"field": [{"name": "VALOR"}, {"name": "NOME"}, {"name": "OBS"}]}},
		"entity": {"f0": {"$": 1500.5}, "f1": {"$": ""}, "f2": []}
	}`)

	assert.Equal(t, []Record{{"VALOR": "1500.5", "NOME": ""}}, MapEntities(e))
}

func TestMapEntities_Empty(t *testing.T) {
	assert.Equal(t, []Record{}, MapEntities(nil))

	e := decodeEntities(t, `{"metadata": {"fields": {"field": [{"name": "A"}]}}}`)
	got := MapEntities(e)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
