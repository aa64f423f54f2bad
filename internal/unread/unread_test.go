package unread

import (
	"testing"
	"time"
)

func TestIsUnread(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lastMessageAt *time.Time
		lastReadAt    *time.Time
		want          bool
	}{
		{
			name:          "no messages at all",
			lastMessageAt: nil,
			lastReadAt:    nil,
			want:          false,
		},
		{
			name:          "never read with messages",
			lastMessageAt: &t1,
			lastReadAt:    nil,
			want:          true,
		},
		{
			name:          "message newer than read receipt",
			lastMessageAt: &t2,
			lastReadAt:    &t1,
			want:          true,
		},
		{
			name:          "read receipt newer than last message",
			lastMessageAt: &t1,
			lastReadAt:    &t2,
			want:          false,
		},
		{
			name:          "read exactly at last message",
			lastMessageAt: &t1,
			lastReadAt:    &t1,
			want:          false,
		},
		{
			name:          "read receipt without messages",
			lastMessageAt: nil,
			lastReadAt:    &t1,
			want:          false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnread(tt.lastMessageAt, tt.lastReadAt); got != tt.want {
				t.Errorf("IsUnread() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	rows := []Row{
		{ConversationID: 1, LastMessageAt: &t2, LastReadAt: &t1},
		{ConversationID: 2, LastMessageAt: &t1, LastReadAt: &t2},
		{ConversationID: 3, LastMessageAt: &t1, LastReadAt: nil},
		{ConversationID: 4, LastMessageAt: nil, LastReadAt: nil},
	}

	s := Summarize(rows)

	if s.TotalUnread != 2 {
		t.Errorf("TotalUnread = %d, want 2", s.TotalUnread)
	}
	if len(s.Conversations) != 4 {
		t.Fatalf("Conversations len = %d, want 4", len(s.Conversations))
	}

	wantUnread := map[int64]bool{1: true, 2: false, 3: true, 4: false}
	for _, c := range s.Conversations {
		if c.Unread != wantUnread[c.ConversationID] {
			t.Errorf("conversation %d unread = %v, want %v", c.ConversationID, c.Unread, wantUnread[c.ConversationID])
		}
	}
}
