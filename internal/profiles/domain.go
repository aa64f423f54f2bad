package profilesdomain

import (
	"context"
	"errors"
)

// Profile is the member metadata owned by the headless content store,
// matched by email address.
type Profile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarKey string `json:"avatar"`
	ListingID string `json:"listing_id"`
}

var ErrProfileNotFound = errors.New("profile not found")

type Client interface {
	ProfileByEmail(ctx context.Context, email string) (Profile, error)
}
