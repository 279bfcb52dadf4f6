package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foundrgate/foundrgate/internal/config"
)

type recordedCall struct {
	Target string          `json:"target"`
	Kind   string          `json:"kind"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args"`
}

// fakeLedger captures calls and serves canned responses per method.
type fakeLedger struct {
	calls     []recordedCall
	responses map[string]string
	status    map[string]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		responses: map[string]string{},
		status:    map[string]int{},
	}
}

func (f *fakeLedger) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var call recordedCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.calls = append(f.calls, call)
		if code, ok := f.status[call.Method]; ok {
			w.WriteHeader(code)
		}
		if resp, ok := f.responses[call.Method]; ok {
			w.Write([]byte(resp))
			return
		}
		w.Write([]byte(`null`))
	}
}

func newTestClient(t *testing.T, fake *fakeLedger) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	client := NewClient(config.LedgerConfig{
		URL:     srv.URL,
		Target:  "ledger-main",
		Timeout: 5 * time.Second,
	})
	return client, srv
}

func TestRegisterUserSendsUpdate(t *testing.T) {
	fake := newFakeLedger()
	client, _ := newTestClient(t, fake)

	if err := client.RegisterUser(context.Background(), "U123"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	call := fake.calls[0]
	if call.Kind != "update" || call.Method != "ensure_user" {
		t.Errorf("unexpected call %s/%s", call.Kind, call.Method)
	}
	if call.Target != "ledger-main" {
		t.Errorf("target = %q, want ledger-main", call.Target)
	}
	var args []string
	if err := json.Unmarshal(call.Args, &args); err != nil {
		t.Fatalf("decode args: %v", err)
	}
	if len(args) != 1 || args[0] != "U123" {
		t.Errorf("args = %v, want [U123]", args)
	}
}

func TestRegisterUserWrapsLedgerError(t *testing.T) {
	fake := newFakeLedger()
	fake.status["ensure_user"] = http.StatusInternalServerError
	fake.responses["ensure_user"] = `{"error":"store unavailable"}`
	client, _ := newTestClient(t, fake)

	err := client.RegisterUser(context.Background(), "U123")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "failed to register user: store unavailable"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestCallFallsBackToStatusError(t *testing.T) {
	fake := newFakeLedger()
	fake.status["get_user"] = http.StatusBadGateway
	fake.responses["get_user"] = `not json`
	client, _ := newTestClient(t, fake)

	_, err := client.GetUser(context.Background(), "U1")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "failed to get user: ledger returned error status 502"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestGetUserDecodesIdentity(t *testing.T) {
	fake := newFakeLedger()
	fake.responses["get_user"] = `{"platform_id":"U7","display_name":"Ada"}`
	client, _ := newTestClient(t, fake)

	user, err := client.GetUser(context.Background(), "U7")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user == nil || user.PlatformID != "U7" || user.DisplayName != "Ada" {
		t.Errorf("unexpected user %+v", user)
	}
	if fake.calls[0].Kind != "query" {
		t.Errorf("kind = %q, want query", fake.calls[0].Kind)
	}
}

func TestGetUserNilWhenUnknown(t *testing.T) {
	fake := newFakeLedger()
	client, _ := newTestClient(t, fake)

	user, err := client.GetUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestStoreChatMessageArgs(t *testing.T) {
	fake := newFakeLedger()
	client, _ := newTestClient(t, fake)

	msg := ChatMessage{
		Role:          RoleAssistant,
		Content:       "answer",
		QuestionAsked: "question",
		Timestamp:     time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		BotName:       "benny",
	}
	if err := client.StoreChatMessage(context.Background(), "U1", msg); err != nil {
		t.Fatalf("StoreChatMessage: %v", err)
	}
	call := fake.calls[0]
	if call.Method != "store_chat_message" || call.Kind != "update" {
		t.Errorf("unexpected call %s/%s", call.Kind, call.Method)
	}
	var args []json.RawMessage
	if err := json.Unmarshal(call.Args, &args); err != nil || len(args) != 2 {
		t.Fatalf("decode args: %v (len %d)", err, len(args))
	}
	var got ChatMessage
	if err := json.Unmarshal(args[1], &got); err != nil {
		t.Fatalf("decode message arg: %v", err)
	}
	if got.Role != RoleAssistant || got.BotName != "benny" || got.QuestionAsked != "question" {
		t.Errorf("unexpected stored message %+v", got)
	}
}

func TestGetMessages(t *testing.T) {
	fake := newFakeLedger()
	fake.responses["get_chat_history"] = `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello","bot_name":"benny"}]`
	client, _ := newTestClient(t, fake)

	msgs, err := client.GetMessages(context.Background(), "U1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[1].BotName != "benny" {
		t.Errorf("unexpected messages %+v", msgs)
	}
}

func TestGenerateDashboardTokenStripsBinaryPrefix(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"plain json string", `"tok-abc123"`, "tok-abc123"},
		{"raw bytes", "tok-raw", "tok-raw"},
		{"binary envelope", "DIDL\x00\x01\x71\x07tok-xyz", "tok-xyz"},
		{"envelope inside json", "\"DIDL\\u0000\\u0001q\\u0008tok-json\"", "tok-json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeLedger()
			fake.responses["generate_dashboard_token"] = tc.body
			client, _ := newTestClient(t, fake)

			token, err := client.GenerateDashboardToken(context.Background(), "U1")
			if err != nil {
				t.Fatalf("GenerateDashboardToken: %v", err)
			}
			if token != tc.want {
				t.Errorf("token = %q, want %q", token, tc.want)
			}
		})
	}
}

func TestUpdateSelectedRepo(t *testing.T) {
	fake := newFakeLedger()
	client, _ := newTestClient(t, fake)

	if err := client.UpdateSelectedRepo(context.Background(), "U1", "acme/site"); err != nil {
		t.Fatalf("UpdateSelectedRepo: %v", err)
	}
	call := fake.calls[0]
	if call.Method != "update_github_selected_repo" {
		t.Errorf("method = %q", call.Method)
	}
	var args []string
	json.Unmarshal(call.Args, &args)
	if len(args) != 2 || args[1] != "acme/site" {
		t.Errorf("args = %v", args)
	}
}

func TestStoreTaskConnectionCarriesProjects(t *testing.T) {
	fake := newFakeLedger()
	client, _ := newTestClient(t, fake)

	projects := []Project{{ID: "p1", Name: "Launch"}, {ID: "p2", Name: "Ops"}}
	if err := client.StoreTaskConnection(context.Background(), "U1", "tok", "ws-9", projects); err != nil {
		t.Fatalf("StoreTaskConnection: %v", err)
	}
	var args []json.RawMessage
	json.Unmarshal(fake.calls[0].Args, &args)
	var conn TaskConnection
	if err := json.Unmarshal(args[1], &conn); err != nil {
		t.Fatalf("decode connection: %v", err)
	}
	if conn.WorkspaceID != "ws-9" || len(conn.Projects) != 2 || conn.Projects[0].Name != "Launch" {
		t.Errorf("unexpected connection %+v", conn)
	}
}

func TestAdmins(t *testing.T) {
	fake := newFakeLedger()
	fake.responses["get_admins"] = `["principal-a","principal-b"]`
	client, _ := newTestClient(t, fake)

	admins, err := client.Admins(context.Background())
	if err != nil {
		t.Fatalf("Admins: %v", err)
	}
	if len(admins) != 2 || admins[0] != "principal-a" {
		t.Errorf("admins = %v", admins)
	}
}
