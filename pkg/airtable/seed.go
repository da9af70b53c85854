package airtable

// seedDefaults populates a fresh store with the default dataset: the current
// user, one base holding a populated primary table and an empty secondary
// table. Everything goes through the normal mutators so the id counters line
// up with entities created later.
func (s *State) seedDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &User{
		ID:     s.seq.Next("usr"),
		Email:  "user@example.com",
		Scopes: []string{"data.records:read", "data.records:write", "schema.bases:read", "webhook:manage"},
	}

	base := s.createBaseLocked("Test Base")

	table := s.createTableLocked(base.ID, "Table 1", "", []*Field{
		{Name: "Name", Type: "singleLineText"},
		{Name: "Notes", Type: "multilineText"},
		{Name: "Status", Type: "singleSelect", Options: map[string]any{
			"choices": []map[string]any{
				{"name": "Todo"},
				{"name": "In progress"},
				{"name": "Done"},
			},
		}},
		{Name: "Count", Type: "number"},
	})

	// Seed records predate any webhook, so no payloads are synthesized here.
	_, _ = s.createRecordLocked(base.ID, table.ID, map[string]any{
		"Name":   "First record",
		"Notes":  "Seeded at startup",
		"Status": "Todo",
		"Count":  float64(1),
	})
	_, _ = s.createRecordLocked(base.ID, table.ID, map[string]any{
		"Name":   "Second record",
		"Status": "Done",
		"Count":  float64(2),
	})

	s.createTableLocked(base.ID, "Table 2", "", nil)
}
