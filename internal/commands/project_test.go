package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/foundrgate/foundrgate/internal/processor"
)

func TestProjectConnectStoresEnrichedConnection(t *testing.T) {
	f := newFakeBackends()
	f.responses["project_connect"] = &processor.BotResponse{
		Text:    "Connected to Asana!",
		BotName: "project",
		Metadata: &processor.Metadata{
			WorkspaceID: "ws-42",
			ProjectIDs:  [][2]string{{"p1", "Launch"}, {"p2", "Ops"}},
		},
	}

	res := dispatch(t, f, "project", map[string]string{"command": "connect asana-tok"})

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v (%s)", res.Outcome, res.Message)
	}

	// Validate with the processor first, persist second.
	want := []string{"ledger.RegisterUser", "processor.Process:project_connect", "ledger.StoreTaskConnection"}
	if strings.Join(f.log, ",") != strings.Join(want, ",") {
		t.Errorf("call order = %v, want %v", f.log, want)
	}

	if len(f.storedConnections) != 1 {
		t.Fatalf("stored %d connections", len(f.storedConnections))
	}
	conn := f.storedConnections[0]
	if conn.Token != "asana-tok" || conn.WorkspaceID != "ws-42" {
		t.Errorf("connection %+v", conn)
	}
	if len(conn.Projects) != 2 || conn.Projects[0].Name != "Launch" {
		t.Errorf("projects %+v", conn.Projects)
	}
}

func TestProjectConnectDefaultsWorkspace(t *testing.T) {
	f := newFakeBackends()
	f.responses["project_connect"] = &processor.BotResponse{Text: "Connected", BotName: "project"}

	res := dispatch(t, f, "project", map[string]string{"command": "connect tok"})
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v (%s)", res.Outcome, res.Message)
	}
	if f.storedConnections[0].WorkspaceID != "default_workspace" {
		t.Errorf("workspace = %q, want default_workspace", f.storedConnections[0].WorkspaceID)
	}
}

func TestProjectConnectRequiresToken(t *testing.T) {
	f := newFakeBackends()
	res := dispatch(t, f, "project", map[string]string{"command": "connect"})

	if res.Outcome != OutcomeSuccess || !strings.Contains(res.Reply, "token") {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(f.log) != 1 {
		t.Errorf("unexpected backend calls %v", f.log)
	}
}

func TestProjectConnectFailureSkipsPersistence(t *testing.T) {
	f := newFakeBackends()
	f.procErr["project_connect"] = errors.New("Invalid Asana token")

	res := dispatch(t, f, "project", map[string]string{"command": "connect bad-tok"})

	if res.Outcome != OutcomeInternalError || res.Message != "Invalid Asana token" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(f.storedConnections) != 0 {
		t.Errorf("connection stored despite processor failure")
	}
}

func TestProjectList(t *testing.T) {
	f := newFakeBackends()
	f.responses["project_list_tasks"] = &processor.BotResponse{Text: "1. Ship it", BotName: "project"}

	res := dispatch(t, f, "project", map[string]string{"command": "list"})

	if res.Outcome != OutcomeSuccess || res.Reply != "*project*\n1. Ship it" {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.processes["project_list_tasks"]["user_id"] != "U1" {
		t.Errorf("args = %v", f.processes["project_list_tasks"])
	}
}

func TestProjectCreateStoresTaskBeforeDownstream(t *testing.T) {
	f := newFakeBackends()
	f.responses["project_create_task"] = &processor.BotResponse{Text: "Task created", BotName: "project"}

	res := dispatch(t, f, "project", map[string]string{"command": "create Ship the landing page"})

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v (%s)", res.Outcome, res.Message)
	}

	// The record is written before the platform call.
	want := []string{"ledger.RegisterUser", "ledger.StoreTask", "processor.Process:project_create_task"}
	if strings.Join(f.log, ",") != strings.Join(want, ",") {
		t.Errorf("call order = %v, want %v", f.log, want)
	}

	if len(f.storedTasks) != 1 {
		t.Fatalf("stored %d tasks", len(f.storedTasks))
	}
	task := f.storedTasks[0]
	if task.ID != "Ship the landing page" || task.Status != "active" {
		t.Errorf("task %+v", task)
	}
	if task.Platform != "asana" || task.PlatformID != "pending" || task.Creator != "U1" {
		t.Errorf("task %+v", task)
	}
}

func TestProjectCreateRequiresDescription(t *testing.T) {
	f := newFakeBackends()
	res := dispatch(t, f, "project", map[string]string{"command": "create"})

	if res.Outcome != OutcomeSuccess || !strings.Contains(res.Reply, "description") {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(f.storedTasks) != 0 {
		t.Errorf("task stored for empty description")
	}
}

func TestProjectUnknownAction(t *testing.T) {
	f := newFakeBackends()
	res := dispatch(t, f, "project", map[string]string{"command": "archive everything"})

	if res.Outcome != OutcomeBadRequest {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	want := "Unknown project action. Available actions: connect, list, create"
	if res.Message != want {
		t.Errorf("message = %q, want %q", res.Message, want)
	}
}
