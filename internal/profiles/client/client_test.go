package profilesclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkravets/nestswap-messenger/internal/config"
	profilesdomain "github.com/dkravets/nestswap-messenger/internal/profiles"
)

func newTestClient(srv *httptest.Server, token string) *Client {
	return New(config.ContentStore{
		BaseURL: srv.URL,
		Token:   token,
		Timeout: 2 * time.Second,
	})
}

func TestClient_ProfileByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("email"); got != "owner@example.com" {
			t.Errorf("email query = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Maren Holt",
			"email": "owner@example.com",
			"avatar": "avatars/u2.jpg",
			"listing_id": "lst-9"
		}`))
	}))
	defer srv.Close()

	profile, err := newTestClient(srv, "secret").ProfileByEmail(context.Background(), "owner@example.com")
	if err != nil {
		t.Fatalf("ProfileByEmail: %v", err)
	}

	if profile.Name != "Maren Holt" {
		t.Errorf("Name = %q", profile.Name)
	}
	if profile.AvatarKey != "avatars/u2.jpg" {
		t.Errorf("AvatarKey = %q", profile.AvatarKey)
	}
	if profile.ListingID != "lst-9" {
		t.Errorf("ListingID = %q", profile.ListingID)
	}
}

func TestClient_ProfileByEmail_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").ProfileByEmail(context.Background(), "gone@example.com")
	if !errors.Is(err, profilesdomain.ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestClient_ProfileByEmail_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").ProfileByEmail(context.Background(), "owner@example.com")
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if errors.Is(err, profilesdomain.ErrProfileNotFound) {
		t.Errorf("500 must not map to ErrProfileNotFound")
	}
}
