package avatars

import (
	"errors"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "avatars/u2.jpg", false},
		{"nested key", "avatars/2025/u2.jpg", false},
		{"empty", "", true},
		{"outside namespace", "listings/cover.jpg", true},
		{"bare prefixless name", "u2.jpg", true},
		{"parent traversal", "avatars/../secrets.txt", true},
		{"double slash", "avatars//u2.jpg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ValidateKey(%q) = %v, want ErrInvalidKey", tt.key, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateKey(%q) = %v, want nil", tt.key, err)
			}
		})
	}
}
