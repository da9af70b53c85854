package airtable

import (
	"time"

	"github.com/apistub/apistub/internal/id"
)

// recordAction is the kind of record mutation that triggers payload synthesis.
type recordAction string

const (
	actionCreate recordAction = "create"
	actionUpdate recordAction = "update"
	actionDelete recordAction = "delete"
)

// --- Webhook store operations ---

// CreateWebhook registers a webhook on a base: enabled, random MAC secret,
// expiring seven days out, payload cursor starting at 1. Returns nil if the
// base does not exist.
func (s *State) CreateWebhook(baseID, notificationURL string, spec *WebhookSpecification) *Webhook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createWebhookLocked(baseID, notificationURL, spec)
}

func (s *State) createWebhookLocked(baseID, notificationURL string, spec *WebhookSpecification) *Webhook {
	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil
	}

	webhook := &Webhook{
		ID:                   s.seq.Next("ach"),
		NotificationURL:      notificationURL,
		Specification:        spec,
		IsHookEnabled:        true,
		ExpirationTime:       time.Now().UTC().Add(webhookLifetime).Format(timeFormat),
		CursorForNextPayload: 1,
		macSecret:            id.Secret(macSecretBytes),
	}
	base.webhooks = append(base.webhooks, webhook)
	s.log.Debug("webhook created", "base", baseID, "id", webhook.ID)
	return webhook
}

// MacSecret returns the webhook's generated MAC secret (base64).
func (w *Webhook) MacSecret() string {
	return w.macSecret
}

// GetWebhooks lists the base's webhooks in creation order. ok is false when
// the base does not exist.
func (s *State) GetWebhooks(baseID string) (webhooks []*Webhook, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil, false
	}
	return append([]*Webhook(nil), base.webhooks...), true
}

func (s *State) getWebhookLocked(baseID, webhookID string) *Webhook {
	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil
	}
	for _, webhook := range base.webhooks {
		if webhook.ID == webhookID {
			return webhook
		}
	}
	return nil
}

// UpdateWebhook toggles a webhook's enabled flag. A nil enable leaves the
// flag untouched.
func (s *State) UpdateWebhook(baseID, webhookID string, enable *bool) *Webhook {
	s.mu.Lock()
	defer s.mu.Unlock()

	webhook := s.getWebhookLocked(baseID, webhookID)
	if webhook == nil {
		return nil
	}
	if enable != nil {
		webhook.IsHookEnabled = *enable
	}
	return webhook
}

// DeleteWebhook removes a webhook and its entire payload log.
func (s *State) DeleteWebhook(baseID, webhookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.getBaseLocked(baseID)
	if base == nil {
		return false
	}
	for i, webhook := range base.webhooks {
		if webhook.ID == webhookID {
			webhook.payloads = nil
			base.webhooks = append(base.webhooks[:i], base.webhooks[i+1:]...)
			return true
		}
	}
	return false
}

// GetWebhookPayloads returns the webhook's payload log, filtered to
// PayloadNumber >= cursor when cursor is positive. nextCursor is the number
// the next synthesized payload will carry. ok is false when the base or
// webhook does not resolve.
func (s *State) GetWebhookPayloads(baseID, webhookID string, cursor int) (payloads []*WebhookPayload, nextCursor int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	webhook := s.getWebhookLocked(baseID, webhookID)
	if webhook == nil {
		return nil, 0, false
	}

	payloads = make([]*WebhookPayload, 0, len(webhook.payloads))
	for _, payload := range webhook.payloads {
		if cursor > 0 && payload.PayloadNumber < cursor {
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads, webhook.CursorForNextPayload, true
}

// --- Payload synthesis ---

// synthesizePayloadsLocked appends a change payload to every eligible webhook
// of the base. It runs under the state write lock, inside the triggering
// record mutation, so callers observe the payload as soon as that call
// returns. Disabled webhooks and webhooks whose filter excludes "tableData"
// are skipped.
func (s *State) synthesizePayloadsLocked(baseID, tableID string, action recordAction, record *Record, deletedID string) {
	base := s.getBaseLocked(baseID)
	if base == nil {
		return
	}

	for _, webhook := range base.webhooks {
		if !webhook.IsHookEnabled || !webhook.wantsTableData() {
			continue
		}

		change := &TableChange{}
		switch action {
		case actionCreate:
			change.CreatedRecordsByID = map[string]*CellValues{
				record.ID: {CellValuesByFieldID: stripNulls(record.Fields)},
			}
		case actionUpdate:
			change.ChangedRecordsByID = map[string]*RecordChanged{
				record.ID: {
					Current:  &CellValues{CellValuesByFieldID: stripNulls(record.Fields)},
					Previous: map[string]any{},
				},
			}
		case actionDelete:
			change.DestroyedRecordIDs = []string{deletedID}
		}

		payload := &WebhookPayload{
			Timestamp:             s.now(),
			BaseTransactionNumber: time.Now().UnixNano(),
			PayloadNumber:         webhook.CursorForNextPayload,
			ActionMetadata: &ActionMetadata{
				Source:         "publicApi",
				SourceMetadata: map[string]any{"user": s.user},
			},
			ChangedTablesByID: map[string]*TableChange{tableID: change},
		}
		webhook.payloads = append(webhook.payloads, payload)
		webhook.CursorForNextPayload++

		s.log.Debug("webhook payload synthesized",
			"base", baseID, "webhook", webhook.ID,
			"action", string(action), "payloadNumber", payload.PayloadNumber)
	}
}
