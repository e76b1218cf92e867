package conversations

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aschepis/backscratcher/companion/chain"
	"github.com/aschepis/backscratcher/companion/llm"
)

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}

func sampleLog() ([]LogItem, time.Time) {
	hilda := uuid.New()
	items := []LogItem{
		{Content: "Hilda & Igor joined", CreatedAt: time.Date(2024, 3, 5, 10, 0, 30, 0, time.UTC)},
		{UserID: ptr(uuid.Nil), UserName: "companion", Content: "hello", CreatedAt: time.Date(2024, 3, 4, 9, 20, 0, 0, time.UTC)},
		{UserID: ptr(hilda), UserName: `Hilda "H"`, Content: "hi <3", CreatedAt: time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC)},
	}
	return items, time.Date(2024, 3, 5, 10, 1, 0, 0, time.UTC)
}

func TestMessageLog(t *testing.T) {
	items, now := sampleLog()
	got := MessageLog(items, now)

	want := []llm.Message{
		llm.NewTextMessage(llm.RoleUser, "<context><messageInfo date=\"Monday 2024-03-04\" time=\"09:15\" from=\"Hilda &#34;H&#34;\"/></context>\nhi <3"),
		llm.NewTextMessage(llm.RoleAssistant, "<context><messageInfo time=\"09:20\" from=\"companion\"/></context>\nhello"),
		llm.NewTextMessage(llm.RoleUser, "<event date=\"Tuesday 2024-03-05\" time=\"10:00:30\">Hilda &amp; Igor joined</event>"),
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Role != want[i].Role {
			t.Errorf("message %d: expected role %s, got %s", i, want[i].Role, got[i].Role)
		}
		if got[i].Text() != want[i].Text() {
			t.Errorf("message %d:\nexpected %q\n     got %q", i, want[i].Text(), got[i].Text())
		}
	}
}

func TestMessageLogEmpty(t *testing.T) {
	if got := MessageLog(nil, time.Now()); len(got) != 0 {
		t.Errorf("Expected no messages, got %v", got)
	}
}

func TestAppendLog(t *testing.T) {
	items, now := sampleLog()
	ch := chain.New(chain.NewClient())
	ch.PushMessage(llm.RoleSystem, "system")

	AppendLog(&ch, items, now)

	if ch.MessageCount() != 4 {
		t.Fatalf("Expected 4 messages, got %d", ch.MessageCount())
	}
	msgs := ch.WireMessages()
	if msgs[0].Role != llm.RoleSystem || msgs[2].Role != llm.RoleAssistant {
		t.Errorf("Unexpected roles %s, %s", msgs[0].Role, msgs[2].Role)
	}
}
