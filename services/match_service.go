package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"league-match-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minPlayersPerMatch = 2
	maxPlayersPerMatch = 4
)

// MatchService owns the match lifecycle: log → confirm/dispute → confirmed or
// cancelled. All state transitions are single conditional updates so two
// players clicking at the same moment cannot lose a confirmation.
type MatchService struct {
	DB    *gorm.DB
	Relay Messenger
}

func NewMatchService(db *gorm.DB, relay Messenger) *MatchService {
	return &MatchService{DB: db, Relay: relay}
}

// CancelSignal carries the messaging refs of a deleted match so the caller
// can tear the message and dispute thread down. The engine does not own
// thread deletion, it only signals it.
type CancelSignal struct {
	ChannelRef       string `json:"channel_ref,omitempty"`
	MessageRef       string `json:"message_ref,omitempty"`
	DisputeThreadRef string `json:"dispute_thread_ref,omitempty"`
}

// LogMatch records a new pending match. playerIDs must contain 2-4 distinct
// ids including winnerUserID. Nobody is pre-confirmed, the winner included;
// every player acknowledges explicitly. Each player's current deck is
// resolved from their profile at log time.
func (s *MatchService) LogMatch(tenantID, winnerUserID string, playerIDs []string, channelRef, messageRef string) (*models.Match, error) {
	if len(playerIDs) < minPlayersPerMatch || len(playerIDs) > maxPlayersPerMatch {
		return nil, ErrInvalidPlayers
	}

	seen := make(map[string]bool, len(playerIDs))
	winnerListed := false
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			return nil, ErrInvalidPlayers
		}
		seen[id] = true
		if id == winnerUserID {
			winnerListed = true
		}
	}
	if !winnerListed {
		return nil, ErrInvalidPlayers
	}

	var season models.Season
	if err := s.DB.First(&season, "tenant_id = ? AND end_date IS NULL", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSeason
		}
		return nil, err
	}

	match := &models.Match{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		SeasonID:     season.ID,
		WinnerUserID: winnerUserID,
		ChannelRef:   channelRef,
		MessageRef:   messageRef,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range playerIDs {
			profile := models.Profile{TenantID: tenantID, UserID: userID}
			if err := tx.FirstOrCreate(&profile, models.Profile{TenantID: tenantID, UserID: userID}).Error; err != nil {
				return err
			}
			match.Players = append(match.Players, models.MatchPlayer{
				ID:      uuid.NewString(),
				MatchID: match.ID,
				UserID:  userID,
				DeckID:  profile.CurrentDeckID,
			})
		}
		return tx.Create(match).Error
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// Confirm flips the caller's confirmation flag. Re-confirming is rejected,
// not silently ignored. Confirms on one match serialize on the match row;
// when the last flag flips, ConfirmedAt is set exactly once, guarded by
// confirmed_at IS NULL. Returns the post-update roster.
func (s *MatchService) Confirm(tenantID, matchID, userID string) (*models.Match, error) {
	match, err := s.findMatch(tenantID, matchID)
	if err != nil {
		return nil, err
	}
	if match.PlayerSlot(userID) == nil {
		return nil, ErrNotAParticipant
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the match row so confirms on the same match serialize. The
		// completion count below must see every committed flag; without the
		// lock two final confirms can each miss the other's flip and leave
		// all flags true with confirmed_at never set.
		var locked models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		res := tx.Model(&models.MatchPlayer{}).
			Where("match_id = ? AND user_id = ? AND confirmed = ?", matchID, userID, false).
			Update("confirmed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyConfirmed
		}

		var unconfirmed int64
		if err := tx.Model(&models.MatchPlayer{}).
			Where("match_id = ? AND confirmed = ?", matchID, false).
			Count(&unconfirmed).Error; err != nil {
			return err
		}
		if unconfirmed == 0 {
			return tx.Model(&models.Match{}).
				Where("id = ? AND confirmed_at IS NULL", matchID).
				Update("confirmed_at", time.Now()).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.findMatch(match.TenantID, matchID)
}

// Dispute opens a dispute thread for the match. One thread per match, ever;
// the second dispute is rejected. Disputing never touches confirmation flags
// and the match stays pending until confirmed or cancelled. When threadRef is
// empty the thread is started through the messaging relay; without a relay an
// internal marker ref is recorded so the invariant still holds.
func (s *MatchService) Dispute(tenantID, matchID, userID, threadRef string) (*models.Match, error) {
	match, err := s.findMatch(tenantID, matchID)
	if err != nil {
		return nil, err
	}
	if match.PlayerSlot(userID) == nil {
		return nil, ErrNotAParticipant
	}
	if match.Disputed() {
		return nil, ErrAlreadyDisputed
	}

	opened := false
	if threadRef == "" {
		threadRef, err = s.openDisputeThread(match, userID)
		if err != nil {
			return nil, err
		}
		opened = true
	}

	res := s.DB.Model(&models.Match{}).
		Where("id = ? AND (dispute_thread_ref = '' OR dispute_thread_ref IS NULL)", matchID).
		Update("dispute_thread_ref", threadRef)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race against another dispute. If we opened a real thread
		// for it, take it back down best-effort so it is not orphaned.
		if opened && s.Relay != nil && match.ChannelRef != "" && match.MessageRef != "" {
			if err := s.Relay.DeleteThread(context.Background(), threadRef); err != nil {
				log.Printf("[MATCH] failed to delete orphaned dispute thread %s: %v", threadRef, err)
			}
		}
		return nil, ErrAlreadyDisputed
	}

	return s.findMatch(match.TenantID, matchID)
}

// Cancel deletes the match. Only the recorded winner may retract a match,
// confirmed or not; admins may remove one on their behalf. The original log
// message is taken down best-effort; the dispute thread ref is returned for
// external teardown.
func (s *MatchService) Cancel(tenantID, matchID, userID string, asAdmin bool) (*CancelSignal, error) {
	match, err := s.findMatch(tenantID, matchID)
	if err != nil {
		return nil, err
	}
	if !asAdmin && userID != match.WinnerUserID {
		return nil, ErrForbidden
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", matchID).Delete(&models.MatchPlayer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Match{}, "id = ?", matchID).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Relay != nil && match.ChannelRef != "" && match.MessageRef != "" {
		if err := s.Relay.DeleteMessage(context.Background(), match.ChannelRef, match.MessageRef); err != nil {
			log.Printf("[MATCH] failed to delete log message for match %s: %v", matchID, err)
		}
	}

	return &CancelSignal{
		ChannelRef:       match.ChannelRef,
		MessageRef:       match.MessageRef,
		DisputeThreadRef: match.DisputeThreadRef,
	}, nil
}

// ListMatches returns a tenant's matches, newest first. pendingOnly keeps
// only matches still waiting on at least one confirmation.
func (s *MatchService) ListMatches(tenantID string, pendingOnly bool) ([]models.Match, error) {
	q := s.DB.Preload("Players").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if pendingOnly {
		q = q.Where("confirmed_at IS NULL")
	}

	var matches []models.Match
	if err := q.Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MatchService) findMatch(tenantID, matchID string) (*models.Match, error) {
	var match models.Match
	if err := s.DB.Preload("Players").First(&match, "id = ? AND tenant_id = ?", matchID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// openDisputeThread starts a thread under the match's log message, pulls the
// players and the tenant's dispute role in, and posts the opening prompt.
func (s *MatchService) openDisputeThread(match *models.Match, disputerID string) (string, error) {
	if s.Relay == nil || match.ChannelRef == "" || match.MessageRef == "" {
		// No messaging surface; record an internal marker so the
		// one-dispute-per-match invariant still applies.
		return "dispute-" + uuid.NewString(), nil
	}

	ctx := context.Background()
	threadRef, err := s.Relay.StartThread(ctx, match.ChannelRef, match.MessageRef, "Match Dispute")
	if err != nil {
		return "", fmt.Errorf("failed to start dispute thread: %w", err)
	}

	for _, p := range match.Players {
		if err := s.Relay.AddThreadMember(ctx, threadRef, p.UserID); err != nil {
			log.Printf("[MATCH] failed to add %s to dispute thread %s: %v", p.UserID, threadRef, err)
		}
	}

	var cfg models.Config
	if err := s.DB.First(&cfg, "tenant_id = ?", match.TenantID).Error; err == nil && cfg.DisputeRoleRef != nil {
		if err := s.Relay.AddThreadMember(ctx, threadRef, *cfg.DisputeRoleRef); err != nil {
			log.Printf("[MATCH] failed to add dispute role to thread %s: %v", threadRef, err)
		}
	}

	prompt := fmt.Sprintf("<@%s> please explain your reasoning for disputing this match, so that it can be resolved.", disputerID)
	if _, err := s.Relay.SendMessage(ctx, threadRef, prompt); err != nil {
		log.Printf("[MATCH] failed to post dispute prompt in thread %s: %v", threadRef, err)
	}

	return threadRef, nil
}

// --- HTTP surface ---

type logMatchRequest struct {
	Opponents  []string `json:"opponents"`
	ChannelRef string   `json:"channel_ref"`
}

// LogMatchHandler logs a match with the caller as the winner.
func (s *MatchService) LogMatchHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	var req logMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	playerIDs := append([]string{userID}, req.Opponents...)

	// Post the confirmation roster first so the stored match can point back
	// at it, mirroring how the log message is the match's public anchor.
	var messageRef string
	if s.Relay != nil && req.ChannelRef != "" {
		content := "Match logged, awaiting confirmation from: " + strings.Join(playerIDs, ", ")
		ref, err := s.Relay.SendMessage(c.Context(), req.ChannelRef, content)
		if err != nil {
			log.Printf("[MATCH] failed to post log message: %v", err)
		} else {
			messageRef = ref
		}
	}

	match, err := s.LogMatch(tenantID, userID, playerIDs, req.ChannelRef, messageRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(match)
}

// GetMatchHandler returns one match with its confirmation roster.
func (s *MatchService) GetMatchHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)

	match, err := s.findMatch(tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(match)
}

// ListMatchesHandler lists the tenant's matches; ?pending=true keeps only
// matches still awaiting confirmations.
func (s *MatchService) ListMatchesHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)

	matches, err := s.ListMatches(tenantID, c.Query("pending") == "true")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"matches": matches})
}

// ConfirmHandler records the caller's confirmation and returns the updated
// roster so the caller can render progress.
func (s *MatchService) ConfirmHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	match, err := s.Confirm(tenantID, c.Params("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(match)
}

// DisputeHandler opens the match's dispute thread on behalf of the caller.
func (s *MatchService) DisputeHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	match, err := s.Dispute(tenantID, c.Params("id"), userID, "")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(match)
}

// CancelHandler deletes the match (winner only, or admin) and returns the
// messaging refs that need external teardown.
func (s *MatchService) CancelHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	signal, err := s.Cancel(tenantID, c.Params("id"), userID, hasRole(c, "admin"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(signal)
}
