package sankhya

import (
	"context"
	"encoding/json"
	"strings"
)

// Query describes one loadRecords call.
type Query struct {
	Entity              string
	Fields              []string
	Criteria            Criteria
	IncludePresentation bool
}

type loadRecordsRequest struct {
	RequestBody struct {
		DataSet dataSet `json:"dataSet"`
	} `json:"requestBody"`
}

type dataSet struct {
	RootEntity                string  `json:"rootEntity"`
	IncludePresentationFields string  `json:"includePresentationFields"`
	OffsetPage                *string `json:"offsetPage"`
	DisableRowsLimit          bool    `json:"disableRowsLimit"`
	Entity                    struct {
		Fieldset struct {
			List string `json:"list"`
		} `json:"fieldset"`
	} `json:"entity"`
	Criteria struct {
		Expression struct {
			Value string `json:"$"`
		} `json:"expression"`
	} `json:"criteria"`
}

type loadRecordsResponse struct {
	Status        json.RawMessage `json:"status"`
	StatusMessage string          `json:"statusMessage"`
	ResponseBody  struct {
		Entities *Entities `json:"entities"`
	} `json:"responseBody"`
}

func (q Query) payload() loadRecordsRequest {
	var r loadRecordsRequest
	ds := &r.RequestBody.DataSet
	ds.RootEntity = q.Entity
	ds.IncludePresentationFields = "N"
	if q.IncludePresentation {
		ds.IncludePresentationFields = "S"
	}
	ds.DisableRowsLimit = true
	ds.Entity.Fieldset.List = strings.Join(q.Fields, ", ")
	ds.Criteria.Expression.Value = q.Criteria.String()
	return r
}

// LoadRecords runs q and returns the mapped rows. Every failure is a
// *FetchError naming q.Entity.
func (c *Client) LoadRecords(ctx context.Context, q Query) ([]Record, error) {
	var resp loadRecordsResponse
	if err := c.Request(ctx, c.baseURL+loadRecordsPath, q.payload(), &resp); err != nil {
		return nil, &FetchError{Entity: q.Entity, Err: err}
	}

	// "1" is success; the gateway reports service errors with HTTP 200.
	if status, _ := scalarString(resp.Status); status == "0" {
		return nil, &FetchError{Entity: q.Entity, Err: &ServiceError{Message: resp.StatusMessage}}
	}

	return MapEntities(resp.ResponseBody.Entities), nil
}

// ServiceError is a loadRecords response with status "0". Message is the
// gateway's statusMessage; keep it in logs and out of user-facing text.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return "sankhya: service returned failure status" }
