package conversationsservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	conversationsdomain "github.com/dkravets/nestswap-messenger/internal/conversations"
	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
	profilesdomain "github.com/dkravets/nestswap-messenger/internal/profiles"
)

type Repo interface {
	FindOrCreate(ctx context.Context, me, partner conversationsdomain.Participant) (int64, bool, error)
	Find(ctx context.Context, userA, userB string) (int64, bool, error)
	ListForUser(ctx context.Context, userID string) ([]conversationsdomain.ListRow, error)
	Get(ctx context.Context, conversationID int64) (*conversationsdomain.Info, error)
}

// AvatarURLer turns a stored avatar key into a fetchable URL.
type AvatarURLer interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

type Service struct {
	repo              Repo
	profiles          profilesdomain.Client
	avatars           AvatarURLer
	placeholderAvatar string
	log               *slog.Logger
}

func New(
	repo Repo,
	profiles profilesdomain.Client,
	avatars AvatarURLer,
	placeholderAvatar string,
	log *slog.Logger,
) *Service {
	return &Service{
		repo:              repo,
		profiles:          profiles,
		avatars:           avatars,
		placeholderAvatar: placeholderAvatar,
		log:               log,
	}
}

// FindOrCreate resolves the conversation between the caller and the partner,
// creating it lazily on first contact. Participants are fixed at creation.
func (s *Service) FindOrCreate(ctx context.Context, me, partner conversationsdomain.Participant) (int64, bool, error) {
	const op = "conversations.service.FindOrCreate"

	if strings.TrimSpace(me.UserID) == "" || strings.TrimSpace(partner.UserID) == "" {
		return 0, false, conversationsdomain.ErrEmptyParticipant
	}
	if me.UserID == partner.UserID {
		return 0, false, conversationsdomain.ErrSelfConversation
	}

	id, created, err := s.repo.FindOrCreate(ctx, me, partner)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	return id, created, nil
}

// Resolve checks whether a conversation between the two members already
// exists, without creating one.
func (s *Service) Resolve(ctx context.Context, userID, partnerUserID string) (int64, bool, error) {
	const op = "conversations.service.Resolve"

	if strings.TrimSpace(partnerUserID) == "" {
		return 0, false, conversationsdomain.ErrEmptyParticipant
	}

	id, found, err := s.repo.Find(ctx, userID, partnerUserID)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	return id, found, nil
}

// ListForUser returns the member's conversations with the counterpart
// enriched from the content store. Backend failure degrades to an empty
// list with a logged diagnostic; a single failed profile lookup degrades
// that entry to its denormalized fields and the placeholder avatar. The
// list render never fails as a whole.
func (s *Service) ListForUser(ctx context.Context, userID string) []conversationsdomain.ListItem {
	const op = "conversations.service.ListForUser"

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Error("failed to list conversations", sl.Err(err))
		return []conversationsdomain.ListItem{}
	}

	items := make([]conversationsdomain.ListItem, 0, len(rows))
	for _, row := range rows {
		partner := conversationsdomain.Participant{
			UserID:      row.Partner.UserID,
			DisplayName: row.Partner.DisplayName.String,
			Email:       row.Partner.Email.String,
			AvatarKey:   row.Partner.AvatarKey.String,
		}
		if row.Partner.LastReadAt.Valid {
			t := row.Partner.LastReadAt.Time
			partner.LastReadAt = &t
		}

		s.enrich(ctx, log, &partner)

		item := conversationsdomain.ListItem{
			Conversation: conversationsdomain.Conversation{
				ID:        row.ConversationID,
				CreatedAt: row.CreatedAt,
			},
			Partner: partner,
		}
		if row.LastMessageAt.Valid {
			t := row.LastMessageAt.Time
			item.Conversation.LastMessageAt = &t
		}
		if row.OwnLastReadAt.Valid {
			t := row.OwnLastReadAt.Time
			item.LastReadAt = &t
		}

		items = append(items, item)
	}

	return items
}

func (s *Service) Get(ctx context.Context, conversationID int64) (*conversationsdomain.Info, error) {
	const op = "conversations.service.Get"

	info, err := s.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(slog.String("op", op))
	for i := range info.Participants {
		s.enrich(ctx, log, &info.Participants[i])
	}

	return info, nil
}

// enrich overlays content-store profile metadata onto a participant and
// resolves the avatar URL. Missing profiles are not an error: the member
// still appears, with whatever denormalized fields the store holds and the
// placeholder image.
func (s *Service) enrich(ctx context.Context, log *slog.Logger, p *conversationsdomain.Participant) {
	if p.Email != "" {
		profile, err := s.profiles.ProfileByEmail(ctx, p.Email)
		switch {
		case err == nil:
			if profile.Name != "" {
				p.DisplayName = profile.Name
			}
			if profile.AvatarKey != "" {
				p.AvatarKey = profile.AvatarKey
			}
			p.ListingID = profile.ListingID
		case errors.Is(err, profilesdomain.ErrProfileNotFound):
			log.Debug("no profile for participant", slog.String("participant", p.UserID))
		default:
			log.Warn("profile lookup failed", slog.String("participant", p.UserID), sl.Err(err))
		}
	}

	p.AvatarURL = s.placeholderAvatar
	if p.AvatarKey != "" {
		url, err := s.avatars.PresignDownload(ctx, p.AvatarKey)
		if err != nil {
			log.Warn("avatar presign failed", slog.String("participant", p.UserID), sl.Err(err))
			return
		}
		p.AvatarURL = url
	}
}
