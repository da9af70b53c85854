// Package airtable emulates the Airtable REST API: a fixed route table over
// an in-memory entity store, with webhook change payloads synthesized on
// every record mutation. Responses are byte-compatible with the real API at
// the field-naming level; no network calls leave the process.
package airtable

import (
	"log/slog"
	"net/http"

	"github.com/apistub/apistub/pkg/logging"
	"github.com/apistub/apistub/pkg/sim"
)

// Service is the Airtable emulator. One Service owns one State.
type Service struct {
	state  *State
	router *sim.Router
	log    *slog.Logger
}

// New creates a Service over the given state. A nil state gets a freshly
// seeded one; a nil logger disables logging.
func New(state *State, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	if state == nil {
		state = NewState(log)
	}
	s := &Service{state: state, log: log}
	s.router = sim.NewRouter(s.routes())
	return s
}

// Name identifies the emulated service.
func (s *Service) Name() string { return "airtable" }

// State returns the backing entity store, for tests that want to assert on
// or arrange state directly.
func (s *Service) State() *State { return s.state }

// Handle routes the request and classifies the outcome.
func (s *Service) Handle(req *sim.Request) *sim.Response {
	body, err := s.router.Dispatch(req)
	return sim.Respond(body, err)
}

// routes is the ordered routing table. Order is load-bearing: the meta- and
// bases-prefixed routes must precede the generic /v0/{base}/{table} shapes so
// the literal segments "meta" and "bases" are never read as a base id, and
// the comment routes must precede the single-record route so a trailing
// "comments" segment is never read as part of a record path.
func (s *Service) routes() []sim.Route {
	return []sim.Route{
		{Pattern: "/v0/meta/whoami", Handlers: sim.Methods{
			http.MethodGet: s.whoami,
		}},
		{Pattern: "/v0/meta/bases", Handlers: sim.Methods{
			http.MethodGet:  s.listBases,
			http.MethodPost: s.createBase,
		}},
		{Pattern: "/v0/meta/bases/{base}", Handlers: sim.Methods{
			http.MethodGet: s.getBase,
		}},
		{Pattern: "/v0/meta/bases/{base}/tables", Handlers: sim.Methods{
			http.MethodGet:  s.listTables,
			http.MethodPost: s.createTable,
		}},
		{Pattern: "/v0/meta/bases/{base}/tables/{table}", Handlers: sim.Methods{
			http.MethodPatch: s.updateTable,
		}},
		{Pattern: "/v0/meta/bases/{base}/tables/{table}/fields", Handlers: sim.Methods{
			http.MethodPost: s.createField,
		}},
		{Pattern: "/v0/meta/bases/{base}/tables/{table}/fields/{field}", Handlers: sim.Methods{
			http.MethodPatch: s.updateField,
		}},
		{Pattern: "/v0/meta/bases/{base}/views", Handlers: sim.Methods{
			http.MethodGet: s.listViews,
		}},
		{Pattern: "/v0/meta/bases/{base}/views/{view}", Handlers: sim.Methods{
			http.MethodGet:    s.getView,
			http.MethodDelete: s.deleteView,
		}},
		{Pattern: "/v0/bases/{base}/webhooks", Handlers: sim.Methods{
			http.MethodGet:  s.listWebhooks,
			http.MethodPost: s.createWebhook,
		}},
		{Pattern: "/v0/bases/{base}/webhooks/{webhook}", Handlers: sim.Methods{
			http.MethodPatch:  s.updateWebhook,
			http.MethodDelete: s.deleteWebhook,
		}},
		{Pattern: "/v0/bases/{base}/webhooks/{webhook}/payloads", Handlers: sim.Methods{
			http.MethodGet: s.listWebhookPayloads,
		}},
		{Pattern: "/v0/{base}/{table}/{record}/comments/{comment}", Handlers: sim.Methods{
			http.MethodPatch:  s.updateComment,
			http.MethodDelete: s.deleteComment,
		}},
		{Pattern: "/v0/{base}/{table}/{record}/comments", Handlers: sim.Methods{
			http.MethodGet:  s.listComments,
			http.MethodPost: s.createComment,
		}},
		{Pattern: "/v0/{base}/{table}/{record}", Handlers: sim.Methods{
			http.MethodGet:    s.getRecord,
			http.MethodPatch:  s.updateRecord,
			http.MethodPut:    s.updateRecord,
			http.MethodDelete: s.deleteRecord,
		}},
		{Pattern: "/v0/{base}/{table}", Handlers: sim.Methods{
			http.MethodGet:    s.listRecords,
			http.MethodPost:   s.createRecords,
			http.MethodPatch:  s.updateRecords,
			http.MethodPut:    s.updateRecords,
			http.MethodDelete: s.deleteRecords,
		}},
	}
}
