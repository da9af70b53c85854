package airtable

import (
	"errors"
	"net/http"

	"github.com/apistub/apistub/pkg/sim"
)

// Handlers for the record surface: /v0/{base}/{table} and
// /v0/{base}/{table}/{record}. The table segment accepts a table id or a
// case-insensitive table name throughout.

// resolvePair maps a (base, table) miss to the right error: NOT_FOUND for an
// unknown base, TABLE_NOT_FOUND for an unknown table under a known base.
func (s *Service) resolvePair(req *sim.Request) *sim.Error {
	if s.state.GetBase(req.Params["base"]) == nil {
		return sim.NotFound("Base %q not found", req.Params["base"])
	}
	if s.state.GetTable(req.Params["base"], req.Params["table"]) == nil {
		return sim.TableNotFound("Table %q not found in base %q", req.Params["table"], req.Params["base"])
	}
	return nil
}

func (s *Service) listRecords(req *sim.Request) (any, *sim.Error) {
	pageSize := sim.QueryInt(req.Query, "pageSize", 0)
	offset := sim.QueryInt(req.Query, "offset", 0)

	records, ok := s.state.GetRecords(req.Params["base"], req.Params["table"], pageSize, offset)
	if !ok {
		return nil, s.resolvePair(req)
	}
	return map[string]any{"records": records}, nil
}

// createRecords accepts both of the API's creation shapes: a single
// {"fields": {...}} object and a batch {"records": [{"fields": {...}}]}.
func (s *Service) createRecords(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Fields  map[string]any `json:"fields"`
		Records []struct {
			Fields map[string]any `json:"fields"`
		} `json:"records"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}

	if body.Records == nil {
		record, err := s.state.CreateRecord(req.Params["base"], req.Params["table"], body.Fields)
		if err != nil {
			return nil, s.creationError(req, err)
		}
		return record, nil
	}

	created := make([]*Record, 0, len(body.Records))
	for _, entry := range body.Records {
		record, err := s.state.CreateRecord(req.Params["base"], req.Params["table"], entry.Fields)
		if err != nil {
			return nil, s.creationError(req, err)
		}
		created = append(created, record)
	}
	return map[string]any{"records": created}, nil
}

// creationError converts the store's single hard failure into the wire error.
func (s *Service) creationError(req *sim.Request, err error) *sim.Error {
	var notFound *EntityNotFoundError
	if errors.As(err, &notFound) {
		if resolved := s.resolvePair(req); resolved != nil {
			return resolved
		}
	}
	return sim.TableNotFound("Table %q not found in base %q", req.Params["table"], req.Params["base"])
}

// updateRecords is the batch update on the table path. PATCH merges fields,
// PUT replaces the whole field map.
func (s *Service) updateRecords(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Records []struct {
			ID     string         `json:"id"`
			Fields map[string]any `json:"fields"`
		} `json:"records"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	if len(body.Records) == 0 {
		return nil, sim.InvalidRequestUnknown("No records to update were given")
	}
	if err := s.resolvePair(req); err != nil {
		return nil, err
	}

	destructive := req.Method == http.MethodPut
	updated := make([]*Record, 0, len(body.Records))
	for _, entry := range body.Records {
		record := s.state.UpdateRecord(req.Params["base"], req.Params["table"], entry.ID, entry.Fields, destructive)
		if record == nil {
			return nil, sim.NotFound("Record %q not found", entry.ID)
		}
		updated = append(updated, record)
	}
	return map[string]any{"records": updated}, nil
}

// deleteRecords is the batch delete on the table path, driven entirely by the
// records query parameters.
func (s *Service) deleteRecords(req *sim.Request) (any, *sim.Error) {
	ids := sim.RecordIDs(req.Query)
	if len(ids) == 0 {
		return nil, sim.InvalidRequestUnknown("No record ids given to delete")
	}
	if err := s.resolvePair(req); err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0, len(ids))
	for _, recordID := range ids {
		if !s.state.DeleteRecord(req.Params["base"], req.Params["table"], recordID) {
			return nil, sim.NotFound("Record %q not found", recordID)
		}
		results = append(results, map[string]any{"id": recordID, "deleted": true})
	}
	return map[string]any{"records": results}, nil
}

func (s *Service) getRecord(req *sim.Request) (any, *sim.Error) {
	record := s.state.GetRecord(req.Params["base"], req.Params["table"], req.Params["record"])
	if record == nil {
		if err := s.resolvePair(req); err != nil {
			return nil, err
		}
		return nil, sim.NotFound("Record %q not found", req.Params["record"])
	}
	return record, nil
}

// updateRecord is the single-record update. PATCH merges, PUT replaces.
func (s *Service) updateRecord(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}

	destructive := req.Method == http.MethodPut
	record := s.state.UpdateRecord(req.Params["base"], req.Params["table"], req.Params["record"], body.Fields, destructive)
	if record == nil {
		if err := s.resolvePair(req); err != nil {
			return nil, err
		}
		return nil, sim.NotFound("Record %q not found", req.Params["record"])
	}
	return record, nil
}

func (s *Service) deleteRecord(req *sim.Request) (any, *sim.Error) {
	if !s.state.DeleteRecord(req.Params["base"], req.Params["table"], req.Params["record"]) {
		if err := s.resolvePair(req); err != nil {
			return nil, err
		}
		return nil, sim.NotFound("Record %q not found", req.Params["record"])
	}
	return map[string]any{"id": req.Params["record"], "deleted": true}, nil
}
