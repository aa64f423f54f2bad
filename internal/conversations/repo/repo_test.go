package conversationsrepo

import "testing"

func TestPairKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"already ordered", "alice", "bob", "alice:bob"},
		{"reversed", "bob", "alice", "alice:bob"},
		{"opaque ids", "usr_9f2", "usr_1a0", "usr_1a0:usr_9f2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairKey(tt.a, tt.b); got != tt.want {
				t.Errorf("PairKey(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if PairKey("x", "y") != PairKey("y", "x") {
		t.Error("PairKey must be symmetric")
	}
}
