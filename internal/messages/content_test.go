package messagesdomain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestContent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Content
		wantErr error
	}{
		{
			name:  "bare string from legacy client",
			input: `"hello there"`,
			want:  TextContent("hello there"),
		},
		{
			name:  "tagged text object",
			input: `{"kind":"text","text":"hi"}`,
			want:  TextContent("hi"),
		},
		{
			name:  "tagged agreement reference",
			input: `{"kind":"agreement","agreement_id":"agr-42","note":"june dates"}`,
			want:  AgreementContent("agr-42", "june dates"),
		},
		{
			name:  "untagged object with agreement id",
			input: `{"agreement_id":"agr-7"}`,
			want:  AgreementContent("agr-7", ""),
		},
		{
			name:  "untagged object with text only",
			input: `{"text":"plain"}`,
			want:  TextContent("plain"),
		},
		{
			name:    "unknown kind rejected",
			input:   `{"kind":"sticker","text":"x"}`,
			wantErr: ErrUnknownContentKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Content
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContent_Empty(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    bool
	}{
		{"blank text", TextContent("   "), true},
		{"real text", TextContent("hello"), false},
		{"agreement without id", AgreementContent("  ", "note"), true},
		{"agreement with id", AgreementContent("agr-1", ""), false},
		{"zero value", Content{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContent_BodyRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content Content
	}{
		{"text", TextContent("see you in June")},
		{"agreement", AgreementContent("agr-42", "confirmed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.content.EncodeBody()
			if err != nil {
				t.Fatalf("EncodeBody: %v", err)
			}
			got, err := DecodeBody(string(tt.content.Kind), body)
			if err != nil {
				t.Fatalf("DecodeBody: %v", err)
			}
			if got != tt.content {
				t.Errorf("round trip changed content: got %+v, want %+v", got, tt.content)
			}
		})
	}
}
