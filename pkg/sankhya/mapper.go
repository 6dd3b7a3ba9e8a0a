package sankhya

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one entity flattened to field name -> string value. A field the
// gateway did not send is absent from the map.
type Record map[string]string

// Entities is the responseBody.entities node of a loadRecords response.
type Entities struct {
	Metadata struct {
		Fields struct {
			Field oneOrMany[fieldMeta] `json:"field"`
		} `json:"fields"`
	} `json:"metadata"`
	Entity oneOrMany[map[string]cell] `json:"entity"`
}

type fieldMeta struct {
	Name string `json:"name"`
}

// cell is the {"$": value} wrapper around every positional field.
type cell struct {
	Value *string
}

func (c *cell) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Some gateways send an empty array or string for null fields.
		return nil
	}
	v, ok := raw["$"]
	if !ok {
		return nil
	}
	s, ok := scalarString(v)
	if ok {
		c.Value = &s
	}
	return nil
}

// scalarString renders a JSON string, number, or bool as text.
func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	}
	if b, err := strconv.ParseBool(string(raw)); err == nil {
		return strconv.FormatBool(b), true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

// oneOrMany decodes either a single JSON object or an array of them.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = oneOrMany[T]{one}
	return nil
}

// MapEntities converts the positional f0..fN layout into Records keyed by the
// declared field names. Nil or entity-less input yields an empty slice.
func MapEntities(e *Entities) []Record {
	if e == nil || len(e.Entity) == 0 {
		return []Record{}
	}

	names := make([]string, len(e.Metadata.Fields.Field))
	for i, f := range e.Metadata.Fields.Field {
		names[i] = f.Name
	}

	out := make([]Record, 0, len(e.Entity))
	for _, raw := range e.Entity {
		rec := make(Record, len(names))
		for i, name := range names {
			c, ok := raw[fmt.Sprintf("f%d", i)]
			if !ok || c.Value == nil {
				continue
			}
			rec[name] = *c.Value
		}
		out = append(out, rec)
	}
	return out
}
