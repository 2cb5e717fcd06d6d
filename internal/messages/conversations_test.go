package messages

import (
	"testing"
	"time"
)

func TestBuildConversations(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "m1", SenderID: "bob", ReceiverID: "me", Content: "hi", CreatedAt: base},
		{ID: "m2", SenderID: "me", ReceiverID: "bob", Content: "hey", CreatedAt: base.Add(time.Minute), IsRead: true},
		{ID: "m3", SenderID: "cy", ReceiverID: "me", Content: "yo", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m4", SenderID: "cy", ReceiverID: "me", Content: "there?", CreatedAt: base.Add(3 * time.Minute), IsRead: true},
		{ID: "m5", SenderID: "me", ReceiverID: "me", Content: "note to self", CreatedAt: base.Add(time.Hour)},
	}

	convs := BuildConversations("me", msgs)
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].UserID != "cy" || convs[0].LastMessage.ID != "m4" || convs[0].UnreadCount != 1 {
		t.Fatalf("unexpected first conversation %+v", convs[0])
	}
	if convs[1].UserID != "bob" || convs[1].LastMessage.ID != "m2" || convs[1].UnreadCount != 1 {
		t.Fatalf("unexpected second conversation %+v", convs[1])
	}
}

func TestBuildConversationsTiesByUserID(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	convs := BuildConversations("me", []Message{
		{ID: "a", SenderID: "zed", ReceiverID: "me", CreatedAt: at},
		{ID: "b", SenderID: "amy", ReceiverID: "me", CreatedAt: at},
	})
	if len(convs) != 2 || convs[0].UserID != "amy" || convs[1].UserID != "zed" {
		t.Fatalf("expected tie broken by user id, got %+v", convs)
	}
}

func TestBuildConversationsEmpty(t *testing.T) {
	convs := BuildConversations("me", nil)
	if convs == nil || len(convs) != 0 {
		t.Fatalf("expected empty slice")
	}
}
