package airtable

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// seeded returns a fresh seeded state plus its default base and primary table.
func seeded(t *testing.T) (*State, *Base, *Table) {
	t.Helper()
	state := NewState(nil)
	bases := state.Bases()
	if len(bases) != 1 {
		t.Fatalf("seeded state has %d bases, want 1", len(bases))
	}
	table := state.GetTable(bases[0].ID, "Table 1")
	if table == nil {
		t.Fatal("seeded state is missing Table 1")
	}
	return state, bases[0], table
}

func TestSeedDefaults(t *testing.T) {
	state, base, table := seeded(t)

	if !strings.HasPrefix(base.ID, "app") || len(base.ID) != 17 {
		t.Errorf("base id = %q, want app prefix with 14 digits", base.ID)
	}
	if len(table.Fields) != 4 {
		t.Errorf("primary table has %d fields, want 4", len(table.Fields))
	}
	if len(table.Views) != 1 || table.Views[0].Name != "Grid view" {
		t.Errorf("primary table views = %+v, want one Grid view", table.Views)
	}
	if table.PrimaryFieldID != table.Fields[0].ID {
		t.Errorf("primaryFieldId = %q, want %q", table.PrimaryFieldID, table.Fields[0].ID)
	}

	records, ok := state.GetRecords(base.ID, table.ID, 0, 0)
	if !ok || len(records) != 2 {
		t.Fatalf("seeded records = %d (ok=%v), want 2", len(records), ok)
	}

	secondary := state.GetTable(base.ID, "Table 2")
	if secondary == nil {
		t.Fatal("seeded state is missing Table 2")
	}
	if len(secondary.Fields) != 1 || secondary.Fields[0].Name != "Name" {
		t.Errorf("secondary table fields = %+v, want a single Name field", secondary.Fields)
	}

	if user := state.CurrentUser(); user == nil || !strings.HasPrefix(user.ID, "usr") {
		t.Errorf("current user = %+v, want usr-prefixed singleton", user)
	}
}

func TestCreateRecordRoundtrip(t *testing.T) {
	state, base, table := seeded(t)

	created, err := state.CreateRecord(base.ID, table.ID, map[string]any{
		"Name":  "A",
		"Count": float64(3),
	})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if !strings.HasPrefix(created.ID, "rec") {
		t.Errorf("record id = %q, want rec prefix", created.ID)
	}
	if _, err := time.Parse(timeFormat, created.CreatedTime); err != nil {
		t.Errorf("createdTime %q is not parseable: %v", created.CreatedTime, err)
	}

	got := state.GetRecord(base.ID, table.ID, created.ID)
	if got == nil {
		t.Fatal("GetRecord returned nil for a just-created record")
	}
	if got.Fields["Name"] != "A" || got.Fields["Count"] != float64(3) {
		t.Errorf("roundtripped fields = %v", got.Fields)
	}
}

func TestCreateRecordDropsNullFields(t *testing.T) {
	state, base, table := seeded(t)

	created, err := state.CreateRecord(base.ID, table.ID, map[string]any{
		"Name":  "A",
		"Notes": nil,
	})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if _, present := created.Fields["Notes"]; present {
		t.Error("null field survived into the stored record")
	}
}

func TestCreateRecordUnresolvedTable(t *testing.T) {
	state, base, _ := seeded(t)

	_, err := state.CreateRecord(base.ID, "No Such Table", map[string]any{"Name": "x"})
	if err == nil {
		t.Fatal("expected error for unresolved table")
	}
	var notFound *EntityNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error = %T, want *EntityNotFoundError", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want a not-found message", err)
	}
}

func TestGetTableByIDAndName(t *testing.T) {
	state, base, table := seeded(t)

	for _, ref := range []string{table.ID, table.Name, "table 1", "TABLE 1"} {
		got := state.GetTable(base.ID, ref)
		if got != table {
			t.Errorf("GetTable(%q) = %v, want the same table instance", ref, got)
		}
	}

	if got := state.GetTable("appMissing", table.ID); got != nil {
		t.Errorf("GetTable on missing base = %v, want nil", got)
	}
	if got := state.GetTable(base.ID, "nope"); got != nil {
		t.Errorf("GetTable on missing table = %v, want nil", got)
	}
}

func TestUpdateRecordDestructiveSemantics(t *testing.T) {
	state, base, table := seeded(t)

	created, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "A", "Status": "X"})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	merged := state.UpdateRecord(base.ID, table.ID, created.ID, map[string]any{"Status": "Y"}, false)
	if merged.Fields["Name"] != "A" || merged.Fields["Status"] != "Y" {
		t.Errorf("non-destructive update fields = %v, want Name:A Status:Y", merged.Fields)
	}

	replaced := state.UpdateRecord(base.ID, table.ID, created.ID, map[string]any{"Status": "Y"}, true)
	if len(replaced.Fields) != 1 || replaced.Fields["Status"] != "Y" {
		t.Errorf("destructive update fields = %v, want only Status:Y", replaced.Fields)
	}
}

func TestDeleteRecordIdempotentNotFound(t *testing.T) {
	state, base, table := seeded(t)

	created, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "A"})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	if !state.DeleteRecord(base.ID, table.ID, created.ID) {
		t.Fatal("first delete reported not found")
	}
	if state.DeleteRecord(base.ID, table.ID, created.ID) {
		t.Error("second delete of the same record reported success")
	}
	if state.DeleteRecord(base.ID, table.ID, "recNeverExisted0") {
		t.Error("delete of a never-created record reported success")
	}
}

func TestGetRecordsPagination(t *testing.T) {
	state := newEmptyState(nil)
	state.seedDefaults()
	base := state.Bases()[0]
	table := state.CreateTable(base.ID, "Paged", "", nil)

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		record, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": name})
		if err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
		ids = append(ids, record.ID)
	}

	page, ok := state.GetRecords(base.ID, table.ID, 2, 1)
	if !ok {
		t.Fatal("GetRecords reported not found")
	}
	if len(page) != 2 || page[0].ID != ids[1] || page[1].ID != ids[2] {
		t.Errorf("pageSize=2 offset=1 returned %v, want records 2 and 3 in order", page)
	}

	beyond, ok := state.GetRecords(base.ID, table.ID, 0, 10)
	if !ok || len(beyond) != 0 {
		t.Errorf("offset beyond set = %v (ok=%v), want empty page", beyond, ok)
	}

	all, _ := state.GetRecords(base.ID, table.ID, 0, 0)
	if len(all) != 3 {
		t.Errorf("no limits returned %d records, want 3", len(all))
	}
}

func TestFieldLookupAndPartialUpdate(t *testing.T) {
	state, base, table := seeded(t)

	field := state.CreateField(base.ID, table.Name, "Priority", "number", "", nil)
	if field == nil || !strings.HasPrefix(field.ID, "fld") {
		t.Fatalf("CreateField = %+v", field)
	}

	if got := state.GetField(base.ID, table.ID, "priority"); got != field {
		t.Errorf("GetField by lowercased name = %v, want the created field", got)
	}
	if got := state.GetField(base.ID, table.ID, field.ID); got != field {
		t.Errorf("GetField by id = %v, want the created field", got)
	}

	desc := "How urgent"
	updated := state.UpdateField(base.ID, table.ID, field.ID, nil, &desc)
	if updated.Name != "Priority" {
		t.Errorf("nil name overwrote the field name: %q", updated.Name)
	}
	if updated.Description != desc {
		t.Errorf("description = %q, want %q", updated.Description, desc)
	}
}

func TestViewsScanAndDelete(t *testing.T) {
	state, base, _ := seeded(t)

	views := state.GetViews(base.ID)
	if len(views) != 2 {
		t.Fatalf("seeded base has %d views, want 2 (one per table)", len(views))
	}

	if got := state.GetView(base.ID, views[0].ID); got != views[0] {
		t.Errorf("GetView = %v, want the first view", got)
	}

	if !state.DeleteView(base.ID, views[0].ID) {
		t.Fatal("DeleteView reported not found")
	}
	if got := state.GetView(base.ID, views[0].ID); got != nil {
		t.Error("view still resolvable after delete")
	}
	if state.DeleteView(base.ID, views[0].ID) {
		t.Error("second delete of the same view reported success")
	}
}

func TestCommentLifecycle(t *testing.T) {
	state, base, table := seeded(t)

	record, err := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "A"})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	comment, err := state.CreateComment(base.ID, table.Name, record.ID, "first!")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if !strings.HasPrefix(comment.ID, "com") {
		t.Errorf("comment id = %q, want com prefix", comment.ID)
	}
	if comment.Author.ID != state.CurrentUser().ID {
		t.Errorf("comment author = %+v, want the current user", comment.Author)
	}

	// Name-addressed and id-addressed requests share the comment list.
	comments, ok := state.GetComments(base.ID, table.ID, record.ID)
	if !ok || len(comments) != 1 {
		t.Fatalf("GetComments by table id = %v (ok=%v), want the one comment", comments, ok)
	}

	updated := state.UpdateComment(base.ID, table.ID, record.ID, comment.ID, "edited")
	if updated == nil || updated.Text != "edited" || updated.LastUpdatedTime == "" {
		t.Errorf("UpdateComment = %+v", updated)
	}

	if !state.DeleteComment(base.ID, table.ID, record.ID, comment.ID) {
		t.Fatal("DeleteComment reported not found")
	}
	if state.DeleteComment(base.ID, table.ID, record.ID, comment.ID) {
		t.Error("second comment delete reported success")
	}

	if _, err := state.CreateComment(base.ID, "No Such Table", record.ID, "x"); err == nil {
		t.Error("CreateComment against an unresolved table did not fail")
	}
}

func TestOrphanedCommentsSurviveRecordDelete(t *testing.T) {
	// Deleting a record does not cascade to its comments. Known gap,
	// kept deliberately.
	state, base, table := seeded(t)

	record, _ := state.CreateRecord(base.ID, table.ID, map[string]any{"Name": "A"})
	if _, err := state.CreateComment(base.ID, table.ID, record.ID, "still here"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	state.DeleteRecord(base.ID, table.ID, record.ID)

	comments, ok := state.GetComments(base.ID, table.ID, record.ID)
	if !ok || len(comments) != 1 {
		t.Errorf("comments after record delete = %v (ok=%v), want the orphan kept", comments, ok)
	}
}

func TestCreateBaseAndTableDefaults(t *testing.T) {
	state := NewState(nil)

	base := state.CreateBase("Second Base")
	if base.PermissionLevel != "create" {
		t.Errorf("permissionLevel = %q, want create", base.PermissionLevel)
	}
	if got := state.GetBase(base.ID); got != base {
		t.Errorf("GetBase = %v, want the created base", got)
	}

	table := state.CreateTable(base.ID, "Things", "stuff", nil)
	if table == nil {
		t.Fatal("CreateTable returned nil")
	}
	if len(table.Fields) != 1 || table.Fields[0].Name != "Name" || table.Fields[0].Type != "singleLineText" {
		t.Errorf("default field = %+v, want a single Name text field", table.Fields)
	}
	if table.PrimaryFieldID != table.Fields[0].ID {
		t.Errorf("primaryFieldId = %q, want the synthesized field", table.PrimaryFieldID)
	}
	if records, ok := state.GetRecords(base.ID, table.ID, 0, 0); !ok || len(records) != 0 {
		t.Errorf("new table records = %v, want empty set", records)
	}

	if state.CreateTable("appMissing", "x", "", nil) != nil {
		t.Error("CreateTable against a missing base did not return nil")
	}
}

func TestUpdateTablePartial(t *testing.T) {
	state, base, table := seeded(t)

	newName := "Renamed"
	updated := state.UpdateTable(base.ID, table.ID, &newName, nil)
	if updated.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", updated.Name)
	}
	if updated.Description != table.Description {
		t.Error("nil description overwrote the existing description")
	}

	if state.UpdateTable(base.ID, "missing", &newName, nil) != nil {
		t.Error("UpdateTable on a missing table did not return nil")
	}
}
