package airtable

import (
	"errors"

	"github.com/apistub/apistub/pkg/sim"
)

// Handlers for the comment surface under /v0/{base}/{table}/{record}/comments.
// Comment identity is scoped by the (base, table, record) triple; the record
// itself is not required to exist for comment creation, matching the store.

func (s *Service) listComments(req *sim.Request) (any, *sim.Error) {
	comments, ok := s.state.GetComments(req.Params["base"], req.Params["table"], req.Params["record"])
	if !ok {
		return nil, s.resolvePair(req)
	}
	if comments == nil {
		comments = []*Comment{}
	}
	return map[string]any{"comments": comments}, nil
}

func (s *Service) createComment(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Text string `json:"text"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Text == "" {
		return nil, sim.InvalidRequestUnknown("Comment text is required")
	}

	comment, err := s.state.CreateComment(req.Params["base"], req.Params["table"], req.Params["record"], body.Text)
	if err != nil {
		var notFound *EntityNotFoundError
		if errors.As(err, &notFound) {
			if resolved := s.resolvePair(req); resolved != nil {
				return nil, resolved
			}
		}
		return nil, sim.TableNotFound("Table %q not found in base %q", req.Params["table"], req.Params["base"])
	}
	return comment, nil
}

func (s *Service) updateComment(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Text string `json:"text"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}

	comment := s.state.UpdateComment(req.Params["base"], req.Params["table"], req.Params["record"], req.Params["comment"], body.Text)
	if comment == nil {
		if err := s.resolvePair(req); err != nil {
			return nil, err
		}
		return nil, sim.NotFound("Comment %q not found", req.Params["comment"])
	}
	return comment, nil
}

func (s *Service) deleteComment(req *sim.Request) (any, *sim.Error) {
	if !s.state.DeleteComment(req.Params["base"], req.Params["table"], req.Params["record"], req.Params["comment"]) {
		if err := s.resolvePair(req); err != nil {
			return nil, err
		}
		return nil, sim.NotFound("Comment %q not found", req.Params["comment"])
	}
	return map[string]any{"id": req.Params["comment"], "deleted": true}, nil
}
