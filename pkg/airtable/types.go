package airtable

// Entity types for the simulated Airtable data model. JSON field names follow
// the real API: camelCase keys, null-valued attributes omitted entirely.
//
// Identifier prefixes, one monotonic counter per kind (see internal/id):
//
//	app  base
//	tbl  table
//	fld  field
//	viw  view
//	rec  record
//	com  comment
//	ach  webhook
//	usr  user

// Base is a workspace base. It owns tables and webhook subscriptions.
type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel"`

	tables   []*Table
	webhooks []*Webhook
}

// Table is a table within a base. Records are kept in insertion order.
type Table struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	PrimaryFieldID string   `json:"primaryFieldId"`
	Fields         []*Field `json:"fields"`
	Views          []*View  `json:"views"`

	records []*Record
}

// Field is a column definition within a table.
type Field struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// View is a saved view within a table.
type View struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	VisibleFieldIDs []string `json:"visibleFieldIds,omitempty"`
}

// Record is a row within a table. Fields maps field names to cell values;
// null values are dropped on write so they never appear in output.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// CommentAuthor identifies who wrote a comment.
type CommentAuthor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Comment is a record comment, addressed by the (base, table, record) triple.
type Comment struct {
	ID              string        `json:"id"`
	Author          CommentAuthor `json:"author"`
	Text            string        `json:"text"`
	CreatedTime     string        `json:"createdTime"`
	LastUpdatedTime string        `json:"lastUpdatedTime,omitempty"`
}

// WebhookSpecification is the filter a webhook was registered with.
type WebhookSpecification struct {
	Options *WebhookOptions `json:"options,omitempty"`
}

// WebhookOptions carries the specification's filter block.
type WebhookOptions struct {
	Filters *WebhookFilters `json:"filters,omitempty"`
}

// WebhookFilters narrows which changes a webhook is notified about.
// An empty DataTypes list means no restriction.
type WebhookFilters struct {
	DataTypes         []string `json:"dataTypes,omitempty"`
	RecordChangeScope string   `json:"recordChangeScope,omitempty"`
}

// Webhook is a notification subscription on a base. Its payload log is
// append-only; CursorForNextPayload starts at 1 and advances by exactly one
// per appended payload.
type Webhook struct {
	ID                   string                `json:"id"`
	NotificationURL      string                `json:"notificationUrl,omitempty"`
	Specification        *WebhookSpecification `json:"specification,omitempty"`
	IsHookEnabled        bool                  `json:"isHookEnabled"`
	ExpirationTime       string                `json:"expirationTime"`
	CursorForNextPayload int                   `json:"cursorForNextPayload"`

	macSecret string
	payloads  []*WebhookPayload
}

// wantsTableData reports whether the webhook's filter admits record-level
// change events. A missing filter admits everything.
func (w *Webhook) wantsTableData() bool {
	if w.Specification == nil || w.Specification.Options == nil || w.Specification.Options.Filters == nil {
		return true
	}
	dataTypes := w.Specification.Options.Filters.DataTypes
	if len(dataTypes) == 0 {
		return true
	}
	for _, dt := range dataTypes {
		if dt == "tableData" {
			return true
		}
	}
	return false
}

// WebhookPayload is one synthesized change event in a webhook's payload log.
type WebhookPayload struct {
	Timestamp             string                  `json:"timestamp"`
	BaseTransactionNumber int64                   `json:"baseTransactionNumber"`
	PayloadNumber         int                     `json:"payloadNumber"`
	ActionMetadata        *ActionMetadata         `json:"actionMetadata"`
	ChangedTablesByID     map[string]*TableChange `json:"changedTablesById"`
}

// ActionMetadata describes what caused a payload.
type ActionMetadata struct {
	Source         string         `json:"source"`
	SourceMetadata map[string]any `json:"sourceMetadata,omitempty"`
}

// TableChange describes the per-table delta inside a payload. Exactly one of
// the three members is populated, matching the triggering action.
type TableChange struct {
	CreatedRecordsByID map[string]*CellValues    `json:"createdRecordsById,omitempty"`
	ChangedRecordsByID map[string]*RecordChanged `json:"changedRecordsById,omitempty"`
	DestroyedRecordIDs []string                  `json:"destroyedRecordIds,omitempty"`
}

// CellValues is a snapshot of a record's non-null cells keyed by field id.
type CellValues struct {
	CellValuesByFieldID map[string]any `json:"cellValuesByFieldId"`
}

// RecordChanged carries the current cells of an updated record. Previous
// values are not tracked, so Previous is always an empty object.
type RecordChanged struct {
	Current  *CellValues    `json:"current"`
	Previous map[string]any `json:"previous"`
}

// User is the simulated current user returned by whoami.
type User struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Scopes []string `json:"scopes,omitempty"`
}
