package airtable

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestCreateWebhookDefaults(t *testing.T) {
	state, base, _ := seeded(t)

	webhook := state.CreateWebhook(base.ID, "https://example.com/hook", nil)
	if webhook == nil {
		t.Fatal("CreateWebhook returned nil")
	}
	if !strings.HasPrefix(webhook.ID, "ach") {
		t.Errorf("webhook id = %q, want ach prefix", webhook.ID)
	}
	if !webhook.IsHookEnabled {
		t.Error("new webhook is not enabled")
	}
	if webhook.CursorForNextPayload != 1 {
		t.Errorf("cursor = %d, want 1", webhook.CursorForNextPayload)
	}
	if _, err := base64.StdEncoding.DecodeString(webhook.MacSecret()); err != nil {
		t.Errorf("mac secret is not base64: %v", err)
	}

	expiry, err := time.Parse(timeFormat, webhook.ExpirationTime)
	if err != nil {
		t.Fatalf("expirationTime %q is not parseable: %v", webhook.ExpirationTime, err)
	}
	until := time.Until(expiry)
	if until < 6*24*time.Hour || until > 8*24*time.Hour {
		t.Errorf("expiration is %v out, want about 7 days", until)
	}

	if state.CreateWebhook("appMissing", "", nil) != nil {
		t.Error("CreateWebhook against a missing base did not return nil")
	}
}

func TestWebhookPayloadNumbersAndCursorFilter(t *testing.T) {
	state, base, table := seeded(t)
	webhook := state.CreateWebhook(base.ID, "", nil)

	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "one"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	payloads, next, ok := state.GetWebhookPayloads(base.ID, webhook.ID, 0)
	if !ok || len(payloads) != 1 {
		t.Fatalf("payloads after first create = %d (ok=%v), want 1", len(payloads), ok)
	}
	if payloads[0].PayloadNumber != 1 {
		t.Errorf("first payloadNumber = %d, want 1", payloads[0].PayloadNumber)
	}
	if next != 2 {
		t.Errorf("next cursor = %d, want 2", next)
	}

	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "two"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	payloads, _, _ = state.GetWebhookPayloads(base.ID, webhook.ID, 0)
	if len(payloads) != 2 || payloads[1].PayloadNumber != 2 {
		t.Fatalf("payloads after second create = %+v, want numbers 1,2", payloads)
	}

	// cursor filter is inclusive
	filtered, _, _ := state.GetWebhookPayloads(base.ID, webhook.ID, 2)
	if len(filtered) != 1 || filtered[0].PayloadNumber != 2 {
		t.Errorf("cursor=2 returned %+v, want only payload 2", filtered)
	}
}

func TestWebhookPayloadShapes(t *testing.T) {
	state, base, table := seeded(t)
	webhook := state.CreateWebhook(base.ID, "", nil)

	record, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "x", "Notes": nil})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	state.UpdateRecord(base.ID, table.ID, record.ID, map[string]any{"Name": "y"}, false)
	state.DeleteRecord(base.ID, table.ID, record.ID)

	payloads, _, _ := state.GetWebhookPayloads(base.ID, webhook.ID, 0)
	if len(payloads) != 3 {
		t.Fatalf("got %d payloads, want create+update+delete", len(payloads))
	}

	created := payloads[0].ChangedTablesByID[table.ID]
	if created == nil || created.CreatedRecordsByID[record.ID] == nil {
		t.Fatalf("create payload shape = %+v", payloads[0].ChangedTablesByID)
	}
	cells := created.CreatedRecordsByID[record.ID].CellValuesByFieldID
	if cells["Name"] != "x" {
		t.Errorf("create payload cells = %v", cells)
	}
	if _, present := cells["Notes"]; present {
		t.Error("null field leaked into the create payload")
	}

	changed := payloads[1].ChangedTablesByID[table.ID].ChangedRecordsByID[record.ID]
	if changed == nil {
		t.Fatalf("update payload shape = %+v", payloads[1].ChangedTablesByID)
	}
	if changed.Current.CellValuesByFieldID["Name"] != "y" {
		t.Errorf("update payload current = %v", changed.Current.CellValuesByFieldID)
	}
	if changed.Previous == nil || len(changed.Previous) != 0 {
		t.Errorf("update payload previous = %v, want empty object", changed.Previous)
	}

	destroyed := payloads[2].ChangedTablesByID[table.ID].DestroyedRecordIDs
	if len(destroyed) != 1 || destroyed[0] != record.ID {
		t.Errorf("delete payload destroyedRecordIds = %v, want [%s]", destroyed, record.ID)
	}

	for _, payload := range payloads {
		if payload.ActionMetadata.Source != "publicApi" {
			t.Errorf("actionMetadata.source = %q, want publicApi", payload.ActionMetadata.Source)
		}
		if payload.BaseTransactionNumber == 0 {
			t.Error("baseTransactionNumber is zero")
		}
		if _, err := time.Parse(timeFormat, payload.Timestamp); err != nil {
			t.Errorf("payload timestamp %q is not parseable: %v", payload.Timestamp, err)
		}
	}
}

func TestWebhookFilterExcludingTableData(t *testing.T) {
	state, base, table := seeded(t)
	webhook := state.CreateWebhook(base.ID, "", &WebhookSpecification{
		Options: &WebhookOptions{Filters: &WebhookFilters{DataTypes: []string{"tableFields"}}},
	})

	record, _ := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "x"})
	state.UpdateRecord(base.ID, table.ID, record.ID, map[string]any{"Name": "y"}, false)
	state.DeleteRecord(base.ID, table.ID, record.ID)

	payloads, _, ok := state.GetWebhookPayloads(base.ID, webhook.ID, 0)
	if !ok {
		t.Fatal("webhook not found")
	}
	if len(payloads) != 0 {
		t.Errorf("filtered webhook accumulated %d payloads, want 0", len(payloads))
	}
	if webhook.CursorForNextPayload != 1 {
		t.Errorf("cursor advanced to %d on skipped payloads", webhook.CursorForNextPayload)
	}
}

func TestDisabledWebhookSkipped(t *testing.T) {
	state, base, table := seeded(t)
	webhook := state.CreateWebhook(base.ID, "", nil)

	disabled := false
	state.UpdateWebhook(base.ID, webhook.ID, &disabled)
	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "x"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	payloads, _, _ := state.GetWebhookPayloads(base.ID, webhook.ID, 0)
	if len(payloads) != 0 {
		t.Errorf("disabled webhook accumulated %d payloads", len(payloads))
	}

	enabled := true
	state.UpdateWebhook(base.ID, webhook.ID, &enabled)
	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "y"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	payloads, _, _ = state.GetWebhookPayloads(base.ID, webhook.ID, 0)
	if len(payloads) != 1 {
		t.Errorf("re-enabled webhook has %d payloads, want 1", len(payloads))
	}
}

func TestIndependentWebhookCursors(t *testing.T) {
	state, base, table := seeded(t)
	first := state.CreateWebhook(base.ID, "", nil)

	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "one"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	second := state.CreateWebhook(base.ID, "", nil)
	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "two"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	firstPayloads, _, _ := state.GetWebhookPayloads(base.ID, first.ID, 0)
	secondPayloads, _, _ := state.GetWebhookPayloads(base.ID, second.ID, 0)

	if len(firstPayloads) != 2 || firstPayloads[1].PayloadNumber != 2 {
		t.Errorf("first webhook payloads = %+v, want numbers 1,2", firstPayloads)
	}
	if len(secondPayloads) != 1 || secondPayloads[0].PayloadNumber != 1 {
		t.Errorf("second webhook payloads = %+v, want its own number 1", secondPayloads)
	}
}

func TestDeleteWebhookPurgesLog(t *testing.T) {
	state, base, table := seeded(t)
	webhook := state.CreateWebhook(base.ID, "", nil)

	if _, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "x"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if !state.DeleteWebhook(base.ID, webhook.ID) {
		t.Fatal("DeleteWebhook reported not found")
	}

	if _, _, ok := state.GetWebhookPayloads(base.ID, webhook.ID, 0); ok {
		t.Error("payload log still reachable after webhook delete")
	}
	if webhooks, _ := state.GetWebhooks(base.ID); len(webhooks) != 0 {
		t.Errorf("base still lists %d webhooks", len(webhooks))
	}
	if state.DeleteWebhook(base.ID, webhook.ID) {
		t.Error("second webhook delete reported success")
	}
}
