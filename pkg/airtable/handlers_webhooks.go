package airtable

import "github.com/apistub/apistub/pkg/sim"

// Handlers for the webhook surface under /v0/bases/{base}/webhooks. These
// routes use the literal "bases" prefix, unlike the record routes where the
// base id is the first path segment.

func (s *Service) listWebhooks(req *sim.Request) (any, *sim.Error) {
	webhooks, ok := s.state.GetWebhooks(req.Params["base"])
	if !ok {
		return nil, sim.NotFound("Base %q not found", req.Params["base"])
	}
	return map[string]any{"webhooks": webhooks}, nil
}

func (s *Service) createWebhook(req *sim.Request) (any, *sim.Error) {
	var body struct {
		NotificationURL string                `json:"notificationUrl"`
		Specification   *WebhookSpecification `json:"specification"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}

	webhook := s.state.CreateWebhook(req.Params["base"], body.NotificationURL, body.Specification)
	if webhook == nil {
		return nil, sim.NotFound("Base %q not found", req.Params["base"])
	}
	return map[string]any{
		"id":              webhook.ID,
		"macSecretBase64": webhook.MacSecret(),
		"expirationTime":  webhook.ExpirationTime,
	}, nil
}

func (s *Service) updateWebhook(req *sim.Request) (any, *sim.Error) {
	var body struct {
		Enable *bool `json:"enable"`
	}
	if err := sim.DecodeBody(req, &body); err != nil {
		return nil, err
	}

	webhook := s.state.UpdateWebhook(req.Params["base"], req.Params["webhook"], body.Enable)
	if webhook == nil {
		return nil, sim.NotFound("Webhook %q not found", req.Params["webhook"])
	}
	return webhook, nil
}

func (s *Service) deleteWebhook(req *sim.Request) (any, *sim.Error) {
	if !s.state.DeleteWebhook(req.Params["base"], req.Params["webhook"]) {
		return nil, sim.NotFound("Webhook %q not found", req.Params["webhook"])
	}
	return map[string]any{}, nil
}

func (s *Service) listWebhookPayloads(req *sim.Request) (any, *sim.Error) {
	cursor := sim.QueryInt(req.Query, "cursor", 0)

	payloads, nextCursor, ok := s.state.GetWebhookPayloads(req.Params["base"], req.Params["webhook"], cursor)
	if !ok {
		return nil, sim.NotFound("Webhook %q not found", req.Params["webhook"])
	}
	return map[string]any{
		"payloads":      payloads,
		"cursor":        nextCursor,
		"mightHaveMore": false,
	}, nil
}
