package airtable

import "github.com/apistub/apistub/pkg/sim"

// Handlers for the /v0/meta/... surface: current user, bases, table and
// field schema, views.

func (s *Service) whoami(req *sim.Request) (any, *sim.Error) {
	return s.state.CurrentUser(), nil
}

func (s *Service) listBases(req *sim.Request) (any, *sim.Error) {
	return map[string]any{"bases": s.state.Bases()}, nil
}

func (s *Service) createBase(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Name string `json:"name"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Name == "" {
		return nil, sim.InvalidRequestUnknown("A base name is required")
	}
	return s.state.CreateBase(body.Name), nil
}

func (s *Service) getBase(req *sim.Request) (any, *sim.Error) {
	base := s.state.GetBase(req.Params["base"])
	if base == nil {
		return nil, sim.NotFound("Base %q not found", req.Params["base"])
	}
	return base, nil
}

func (s *Service) listTables(req *sim.Request) (any, *sim.Error) {
	tables, ok := s.state.Tables(req.Params["base"])
	if !ok {
		return nil, sim.NotFound("Base %q not found", req.Params["base"])
	}
	return map[string]any{"tables": tables}, nil
}

func (s *Service) createTable(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Fields      []*Field `json:"fields"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Name == "" {
		return nil, sim.InvalidRequestUnknown("A table name is required")
	}
	table := s.state.CreateTable(req.Params["base"], body.Name, body.Description, body.Fields)
	if table == nil {
		return nil, sim.NotFound("Base %q not found", req.Params["base"])
	}
	return table, nil
}

func (s *Service) updateTable(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	table := s.state.UpdateTable(req.Params["base"], req.Params["table"], body.Name, body.Description)
	if table == nil {
		return nil, sim.TableNotFound("Table %q not found in base %q", req.Params["table"], req.Params["base"])
	}
	return table, nil
}

func (s *Service) createField(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Name        string         `json:"name"`
		Type        string         `json:"type"`
		Description string         `json:"description"`
		Options     map[string]any `json:"options"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Name == "" || body.Type == "" {
		return nil, sim.InvalidRequestUnknown("Field name and type are required")
	}
	field := s.state.CreateField(req.Params["base"], req.Params["table"], body.Name, body.Type, body.Description, body.Options)
	if field == nil {
		return nil, sim.TableNotFound("Table %q not found in base %q", req.Params["table"], req.Params["base"])
	}
	return field, nil
}

func (s *Service) updateField(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	field := s.state.UpdateField(req.Params["base"], req.Params["table"], req.Params["field"], body.Name, body.Description)
	if field == nil {
		return nil, sim.NotFound("Field %q not found", req.Params["field"])
	}
	return field, nil
}

func (s *Service) listViews(req *sim.Request) (any, *sim.Error) {
	if s.state.GetBase(req.Params["base"]) == nil {
		return nil, sim.NotFound("Base %q not found", req.Params["base"])
	}
	views := s.state.GetViews(req.Params["base"])
	if views == nil {
		views = []*View{}
	}
	return map[string]any{"views": views}, nil
}

func (s *Service) getView(req *sim.Request) (any, *sim.Error) {
	view := s.state.GetView(req.Params["base"], req.Params["view"])
	if view == nil {
		return nil, sim.NotFound("View %q not found", req.Params["view"])
	}
	return view, nil
}

func (s *Service) deleteView(req *sim.Request) (any, *sim.Error) {
	if !s.state.DeleteView(req.Params["base"], req.Params["view"]) {
		return nil, sim.NotFound("View %q not found", req.Params["view"])
	}
	return map[string]any{"id": req.Params["view"], "deleted": true}, nil
}
