package main

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel() model {
	return newModel(appConfig{
		WebhookURL: "http://127.0.0.1:9/hook",
		PayloadKey: "message",
		Title:      "ChatRelay",
	})
}

func TestEnterSubmitsAndClearsInput(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("  hello  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(model)

	if next.chat.size() != 2 {
		t.Fatalf("expected local message plus placeholder, got %d entries", next.chat.size())
	}
	if next.input.Value() != "" {
		t.Fatalf("expected input cleared after optimistic append, got %q", next.input.Value())
	}
	if !next.chat.inFlight() {
		t.Fatalf("expected submitting state after enter")
	}
	if cmd == nil {
		t.Fatalf("expected a webhook command to be issued")
	}
}

func TestEnterWhileInFlightIsNoop(t *testing.T) {
	m := newTestModel()
	m.chat.begin("first")
	before := m.chat.size()
	m.input.SetValue("second")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(model)

	if next.chat.size() != before {
		t.Fatalf("expected transcript length unchanged, got %d want %d", next.chat.size(), before)
	}
	if next.input.Value() != "second" {
		t.Fatalf("expected rejected input to stay in the field, got %q", next.input.Value())
	}
}

func TestEnterEmptyInputIsNoop(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("   ")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(model)

	if next.chat.size() != 0 {
		t.Fatalf("expected no messages for whitespace-only input, got %d", next.chat.size())
	}
}

func TestReplyDoneResolvesTranscript(t *testing.T) {
	m := newTestModel()
	m.chat.begin("ping")

	updated, _ := m.Update(replyDoneMsg{reply: "Hello"})
	next := updated.(model)

	if next.chat.awaitingReply() {
		t.Fatalf("expected placeholder removed after resolution")
	}
	entries := next.chat.snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected local plus remote, got %d entries", len(entries))
	}
	last := entries[len(entries)-1]
	if last.Origin != originRemote || last.Text != "Hello" {
		t.Fatalf("unexpected remote entry: %+v", last)
	}
	if next.statusErr {
		t.Fatalf("did not expect an error notification on success")
	}
}

func TestReplyDoneFailureNotifiesOnce(t *testing.T) {
	m := newTestModel()
	m.chat.begin("ping")
	logsBefore := len(m.logs)

	updated, _ := m.Update(replyDoneMsg{err: errors.New("connection refused")})
	next := updated.(model)

	if next.chat.awaitingReply() {
		t.Fatalf("expected placeholder removed after failure")
	}
	if next.chat.size() != 1 {
		t.Fatalf("expected only the local message to remain, got %d entries", next.chat.size())
	}
	if !next.statusErr {
		t.Fatalf("expected an error notification")
	}
	if len(next.logs) != logsBefore+1 {
		t.Fatalf("expected exactly one notification, got %d new entries", len(next.logs)-logsBefore)
	}
	if _, ok := next.chat.begin("again"); !ok {
		t.Fatalf("expected the controller to accept the next submission after failure")
	}
}

func TestSlashClearBlockedWhileInFlight(t *testing.T) {
	m := newTestModel()
	m.chat.begin("ping")

	m.handleSlash("/clear")

	if m.chat.size() != 2 {
		t.Fatalf("expected transcript untouched while in flight, got %d entries", m.chat.size())
	}
	if !m.statusErr {
		t.Fatalf("expected an error notification for /clear while in flight")
	}
}

func TestSlashClearDiscardsSettledTranscript(t *testing.T) {
	m := newTestModel()
	m.chat.begin("ping")
	m.chat.resolve("pong")

	m.handleSlash("/clear")

	if m.chat.size() != 0 {
		t.Fatalf("expected empty transcript after /clear, got %d entries", m.chat.size())
	}
}

func TestSlashUnknownCommand(t *testing.T) {
	m := newTestModel()
	m.handleSlash("/bogus")
	if !m.statusErr {
		t.Fatalf("expected an error notification for an unknown command")
	}
}
