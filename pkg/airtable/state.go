package airtable

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/apistub/apistub/internal/id"
	"github.com/apistub/apistub/pkg/logging"
)

// timeFormat matches the timestamp rendering of the real API.
const timeFormat = "2006-01-02T15:04:05.000Z"

// webhookLifetime is how far in the future a new webhook expires.
const webhookLifetime = 7 * 24 * time.Hour

// macSecretBytes is the size of a generated webhook MAC secret.
const macSecretBytes = 32

// EntityNotFoundError is returned by the two store operations that are
// allowed to fail: creating a record or a comment against a table that does
// not resolve. Every other lookup miss is reported with a nil/false result.
type EntityNotFoundError struct {
	Kind string
	Ref  string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

// commentKey is the composite identity scope of a comment. The table part is
// the resolved table id, so name-addressed and id-addressed requests land on
// the same comment list.
type commentKey struct {
	base   string
	table  string
	record string
}

// State is the entity store for one simulated Airtable instance. All access
// is guarded by a single coarse lock; mutating operations hold the write lock
// across the webhook payload fan-out, so a synthesized payload is always
// visible by the time the triggering call returns.
//
// State has no knowledge of HTTP. Operations never panic for missing
// entities; they return nil or false, except createRecord/createComment which
// return EntityNotFoundError when their owning table cannot be resolved.
type State struct {
	mu  sync.RWMutex
	seq *id.Sequence
	log *slog.Logger

	user     *User
	bases    []*Base
	comments map[commentKey][]*Comment
}

// NewState creates a store seeded with the default dataset (see seed.go),
// so a fresh server is immediately queryable. Pass nil to disable logging.
func NewState(log *slog.Logger) *State {
	s := newEmptyState(log)
	s.seedDefaults()
	return s
}

func newEmptyState(log *slog.Logger) *State {
	if log == nil {
		log = logging.Nop()
	}
	return &State{
		seq:      id.NewSequence(),
		log:      log,
		comments: make(map[commentKey][]*Comment),
	}
}

func (s *State) now() string {
	return time.Now().UTC().Format(timeFormat)
}

// resolve returns the first element matching ref by exact id, then the first
// matching by case-insensitive name. This is the single id-or-name resolver
// shared by tables and fields.
func resolve[T any](items []*T, ref string, idOf, nameOf func(*T) string) *T {
	for _, item := range items {
		if idOf(item) == ref {
			return item
		}
	}
	for _, item := range items {
		if strings.EqualFold(nameOf(item), ref) {
			return item
		}
	}
	return nil
}

// stripNulls copies fields, dropping null values. The simulated API never
// emits null cells, and webhook payloads carry non-null cells only.
func stripNulls(fields map[string]any) map[string]any {
	clean := make(map[string]any, len(fields))
	for name, value := range fields {
		if value == nil {
			continue
		}
		clean[name] = value
	}
	return clean
}

// CurrentUser returns the store's singleton user.
func (s *State) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// --- Bases ---

// CreateBase creates a base with creator permissions and no tables.
func (s *State) CreateBase(name string) *Base {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createBaseLocked(name)
}

func (s *State) createBaseLocked(name string) *Base {
	base := &Base{
		ID:              s.seq.Next("app"),
		Name:            name,
		PermissionLevel: "create",
	}
	s.bases = append(s.bases, base)
	s.log.Debug("base created", "id", base.ID, "name", name)
	return base
}

// GetBase returns the base with the given id, or nil.
func (s *State) GetBase(baseID string) *Base {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getBaseLocked(baseID)
}

func (s *State) getBaseLocked(baseID string) *Base {
	for _, base := range s.bases {
		if base.ID == baseID {
			return base
		}
	}
	return nil
}

// Bases returns all bases in creation order.
func (s *State) Bases() []*Base {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Base(nil), s.bases...)
}

// --- Tables ---

// Tables lists a base's tables in creation order. ok is false when the base
// does not exist.
func (s *State) Tables(baseID string) (tables []*Table, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil, false
	}
	return append([]*Table(nil), base.tables...), true
}

// CreateTable creates a table under the base. When fields is empty a single
// "Name" text field is synthesized. The table always starts with an empty
// record set and a default grid view. Returns nil if the base does not exist.
func (s *State) CreateTable(baseID, name, description string, fields []*Field) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTableLocked(baseID, name, description, fields)
}

func (s *State) createTableLocked(baseID, name, description string, fields []*Field) *Table {
	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil
	}

	if len(fields) == 0 {
		fields = []*Field{{Name: "Name", Type: "singleLineText"}}
	}
	for _, field := range fields {
		if field.ID == "" {
			field.ID = s.seq.Next("fld")
		}
	}

	table := &Table{
		ID:             s.seq.Next("tbl"),
		Name:           name,
		Description:    description,
		PrimaryFieldID: fields[0].ID,
		Fields:         fields,
		Views: []*View{{
			ID:   s.seq.Next("viw"),
			Name: "Grid view",
			Type: "grid",
		}},
	}
	base.tables = append(base.tables, table)
	s.log.Debug("table created", "base", baseID, "id", table.ID, "name", name)
	return table
}

// GetTable resolves a table by id or case-insensitive name. First match wins.
func (s *State) GetTable(baseID, tableRef string) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTableLocked(baseID, tableRef)
}

func (s *State) getTableLocked(baseID, tableRef string) *Table {
	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil
	}
	return resolve(base.tables, tableRef,
		func(t *Table) string { return t.ID },
		func(t *Table) string { return t.Name })
}

// UpdateTable applies a partial update; nil arguments leave the attribute
// untouched. Returns the updated table, or nil if it does not resolve.
func (s *State) UpdateTable(baseID, tableRef string, name, description *string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}
	if name != nil {
		table.Name = *name
	}
	if description != nil {
		table.Description = *description
	}
	return table
}

// --- Fields ---

// CreateField adds a field to a table. Returns nil if the table does not
// resolve.
func (s *State) CreateField(baseID, tableRef, name, fieldType, description string, options map[string]any) *Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}

	field := &Field{
		ID:          s.seq.Next("fld"),
		Name:        name,
		Type:        fieldType,
		Description: description,
		Options:     options,
	}
	table.Fields = append(table.Fields, field)
	return field
}

// GetField resolves a field by id or case-insensitive name, with the same
// precedence as tables.
func (s *State) GetField(baseID, tableRef, fieldRef string) *Field {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}
	return resolve(table.Fields, fieldRef,
		func(f *Field) string { return f.ID },
		func(f *Field) string { return f.Name })
}

// UpdateField applies a partial update to a field; nil arguments leave the
// attribute untouched.
func (s *State) UpdateField(baseID, tableRef, fieldRef string, name, description *string) *Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}
	field := resolve(table.Fields, fieldRef,
		func(f *Field) string { return f.ID },
		func(f *Field) string { return f.Name })
	if field == nil {
		return nil
	}
	if name != nil {
		field.Name = *name
	}
	if description != nil {
		field.Description = *description
	}
	return field
}

// --- Views ---

// GetViews returns every view of every table in the base. Views have no
// base-level index; this is a scan.
func (s *State) GetViews(baseID string) []*View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil
	}
	var views []*View
	for _, table := range base.tables {
		views = append(views, table.Views...)
	}
	return views
}

// GetView returns the view with the given id, scanning all tables of the base.
func (s *State) GetView(baseID, viewID string) *View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := s.getBaseLocked(baseID)
	if base == nil {
		return nil
	}
	for _, table := range base.tables {
		for _, view := range table.Views {
			if view.ID == viewID {
				return view
			}
		}
	}
	return nil
}

// DeleteView removes the first view matching the id across the base's tables.
func (s *State) DeleteView(baseID, viewID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.getBaseLocked(baseID)
	if base == nil {
		return false
	}
	for _, table := range base.tables {
		for i, view := range table.Views {
			if view.ID == viewID {
				table.Views = append(table.Views[:i], table.Views[i+1:]...)
				return true
			}
		}
	}
	return false
}

// --- Records ---

// CreateRecord creates a record in the resolved table, stamps its creation
// time and synthesizes a "create" payload for the base's webhooks. This is
// one of the two store operations that can fail: an unresolvable table yields
// EntityNotFoundError.
func (s *State) CreateRecord(baseID, tableRef string, fields map[string]any) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createRecordLocked(baseID, tableRef, fields)
}

func (s *State) createRecordLocked(baseID, tableRef string, fields map[string]any) (*Record, error) {
	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil, &EntityNotFoundError{Kind: "table", Ref: tableRef}
	}

	record := &Record{
		ID:          s.seq.Next("rec"),
		CreatedTime: s.now(),
		Fields:      stripNulls(fields),
	}
	table.records = append(table.records, record)
	s.synthesizePayloadsLocked(baseID, table.ID, actionCreate, record, "")
	return record, nil
}

// GetRecord returns a record by id, or nil if the base, table or record does
// not resolve.
func (s *State) GetRecord(baseID, tableRef, recordID string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}
	return findRecord(table, recordID)
}

func findRecord(table *Table, recordID string) *Record {
	for _, record := range table.records {
		if record.ID == recordID {
			return record
		}
	}
	return nil
}

// GetRecords returns a page of the table's records in insertion order.
// offset applies before pageSize; non-positive values mean "no limit" and
// "start at the beginning". An offset beyond the set yields an empty page.
// ok is false when the base or table does not resolve.
func (s *State) GetRecords(baseID, tableRef string, pageSize, offset int) (records []*Record, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil, false
	}

	page := table.records
	if offset > 0 {
		if offset >= len(page) {
			return []*Record{}, true
		}
		page = page[offset:]
	}
	if pageSize > 0 && pageSize < len(page) {
		page = page[:pageSize]
	}
	return append([]*Record(nil), page...), true
}

// UpdateRecord mutates a record's field map and synthesizes an "update"
// payload. destructive=true replaces the whole map; destructive=false merges
// the given keys over the existing ones, leaving untouched keys alone.
func (s *State) UpdateRecord(baseID, tableRef, recordID string, fields map[string]any, destructive bool) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}
	record := findRecord(table, recordID)
	if record == nil {
		return nil
	}

	if destructive {
		record.Fields = stripNulls(fields)
	} else {
		for name, value := range stripNulls(fields) {
			record.Fields[name] = value
		}
	}
	s.synthesizePayloadsLocked(baseID, table.ID, actionUpdate, record, "")
	return record
}

// DeleteRecord removes a record by id and synthesizes a "delete" payload
// carrying only the deleted id. Returns false when nothing resolved; deleting
// the same record twice is idempotently "not found".
func (s *State) DeleteRecord(baseID, tableRef, recordID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return false
	}
	for i, record := range table.records {
		if record.ID == recordID {
			table.records = append(table.records[:i], table.records[i+1:]...)
			s.synthesizePayloadsLocked(baseID, table.ID, actionDelete, nil, recordID)
			return true
		}
	}
	return false
}

// --- Comments ---

// CreateComment attaches a comment to a record slot, authored by the current
// user. Like CreateRecord, an unresolvable table is the one failure mode.
// The record itself is not required to exist.
func (s *State) CreateComment(baseID, tableRef, recordID, text string) (*Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil, &EntityNotFoundError{Kind: "table", Ref: tableRef}
	}

	comment := &Comment{
		ID: s.seq.Next("com"),
		Author: CommentAuthor{
			ID:    s.user.ID,
			Email: s.user.Email,
		},
		Text:        text,
		CreatedTime: s.now(),
	}
	key := commentKey{base: baseID, table: table.ID, record: recordID}
	s.comments[key] = append(s.comments[key], comment)
	return comment, nil
}

// GetComments lists a record's comments in creation order. ok is false when
// the base or table does not resolve.
func (s *State) GetComments(baseID, tableRef, recordID string) (comments []*Comment, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil, false
	}
	key := commentKey{base: baseID, table: table.ID, record: recordID}
	return append([]*Comment(nil), s.comments[key]...), true
}

// UpdateComment replaces a comment's text and stamps its modification time.
func (s *State) UpdateComment(baseID, tableRef, recordID, commentID, text string) *Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return nil
	}
	key := commentKey{base: baseID, table: table.ID, record: recordID}
	for _, comment := range s.comments[key] {
		if comment.ID == commentID {
			comment.Text = text
			comment.LastUpdatedTime = s.now()
			return comment
		}
	}
	return nil
}

// DeleteComment removes a comment from its record slot.
func (s *State) DeleteComment(baseID, tableRef, recordID, commentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.getTableLocked(baseID, tableRef)
	if table == nil {
		return false
	}
	key := commentKey{base: baseID, table: table.ID, record: recordID}
	for i, comment := range s.comments[key] {
		if comment.ID == commentID {
			s.comments[key] = append(s.comments[key][:i], s.comments[key][i+1:]...)
			return true
		}
	}
	return false
}
