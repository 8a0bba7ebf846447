package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/relaybot/core/logger"
	"github.com/m3rciful/relaybot/core/telegram/format"
	"github.com/m3rciful/relaybot/internal/metrics"
	"github.com/m3rciful/relaybot/internal/payout"
)

// Service composes the request tracker and the reply router into the bot's conversation logic.
type Service struct {
	tracker *payout.Tracker
	router  *Router
	out     Messenger
	texts   Texts
}

// NewService builds a service. The staff chat is the one the router serves;
// a router with chat id 0 puts the service in degraded mode.
func NewService(tracker *payout.Tracker, router *Router, out Messenger, texts Texts) *Service {
	return &Service{tracker: tracker, router: router, out: out, texts: texts}
}

// Texts returns the texts in use.
func (s *Service) Texts() Texts {
	return s.texts
}

// IsStaffChat reports whether chatID is the configured staff chat.
func (s *Service) IsStaffChat(chatID int64) bool {
	staff := s.router.StaffChatID()
	return staff != 0 && chatID == staff
}

// Terms sends the terms with the payout button.
func (s *Service) Terms(ctx context.Context, chatID int64) error {
	return s.reply(ctx, chatID, s.texts.Terms, KeyboardTerms)
}

// Help sends the short instructions.
func (s *Service) Help(ctx context.Context, chatID int64) error {
	return s.reply(ctx, chatID, s.texts.Help, KeyboardNone)
}

// Where tells the chat its own id.
func (s *Service) Where(ctx context.Context, chatID int64) error {
	return s.reply(ctx, chatID, s.texts.Where(chatID), KeyboardNone)
}

// BeginPayout opens a fresh request and asks for the link.
func (s *Service) BeginPayout(ctx context.Context, userID, chatID int64) error {
	if _, err := s.tracker.StartRequest(ctx, userID); err != nil {
		_ = s.reply(ctx, chatID, s.texts.InternalError, KeyboardNone)
		return err
	}
	metrics.RequestStarted()
	return s.reply(ctx, chatID, s.texts.LinkPrompt, KeyboardNone)
}

// Cancel drops the user's request.
func (s *Service) Cancel(ctx context.Context, userID, chatID int64) error {
	removed, err := s.tracker.CancelRequest(ctx, userID)
	if err != nil {
		_ = s.reply(ctx, chatID, s.texts.InternalError, KeyboardNone)
		return err
	}
	if !removed {
		return s.reply(ctx, chatID, s.texts.NothingToCancel, KeyboardNone)
	}
	metrics.RequestCancelled()
	return s.reply(ctx, chatID, s.texts.Cancelled, KeyboardNone)
}

// HandlePrivate processes a message a user sent to the bot in a private chat.
func (s *Service) HandlePrivate(ctx context.Context, m Message) error {
	if m.From.IsBot {
		return nil
	}
	if s.router.StaffChatID() == 0 {
		logger.Warn(ctx, "relay", "relay.staff_chat.missing", slog.Int64("user_id", m.From.ID))
		return s.reply(ctx, m.ChatID, s.texts.NotConfigured, KeyboardNone)
	}

	res, err := s.tracker.SubmitInput(ctx, m.From.ID, m.Input)
	if err != nil {
		_ = s.reply(ctx, m.ChatID, s.texts.InternalError, KeyboardNone)
		return err
	}

	switch res.Outcome {
	case payout.OutcomeNoRequest:
		return s.relayMessage(ctx, m)
	case payout.OutcomeRejected:
		metrics.ValidationFailed(string(res.Invalid.Reason))
		return s.reply(ctx, m.ChatID, s.texts.Rejection(res.Invalid.Reason), KeyboardNone)
	case payout.OutcomeAdvanced:
		metrics.StageAdvanced(string(res.Stage))
		return s.reply(ctx, m.ChatID, s.texts.StagePrompt(res.Stage), KeyboardNone)
	case payout.OutcomeCompleted:
		return s.dispatch(ctx, m, res.Request)
	}
	return fmt.Errorf("unexpected outcome %s", res.Outcome)
}

// dispatch posts a completed request to the staff chat: a header, then the single proof attachment.
// Only the header is recorded; staff reply to it.
func (s *Service) dispatch(ctx context.Context, m Message, req payout.Request) error {
	staff := s.router.StaffChatID()

	headerID, err := s.out.SendText(ctx, staff, s.texts.RequestHeader(req, m.From), KeyboardNone)
	if err != nil {
		metrics.DispatchFailed("request")
		logger.Error(ctx, "relay", "relay.dispatch.fail",
			slog.String("request_id", req.ID),
			slog.String("err", err.Error()),
		)
		restored, rerr := s.tracker.Restore(ctx, req)
		if rerr != nil {
			logger.Error(ctx, "relay", "relay.dispatch.restore_fail",
				slog.String("request_id", req.ID),
				slog.String("err", rerr.Error()),
			)
		}
		if restored {
			_ = s.reply(ctx, m.ChatID, s.texts.DispatchFailed, KeyboardNone)
		} else {
			_ = s.reply(ctx, m.ChatID, s.texts.InternalError, KeyboardNone)
		}
		return fmt.Errorf("dispatch request %s: %w", req.ID, err)
	}
	s.tracker.Settle(req)
	s.record(ctx, "request", headerID, m)

	if req.Media != nil {
		media := *req.Media
		media.Caption = s.texts.ProofCaption(media)
		if _, err := s.out.SendMedia(ctx, staff, media); err != nil {
			metrics.DispatchFailed("proof")
			logger.Error(ctx, "relay", "relay.dispatch.proof_fail",
				slog.String("request_id", req.ID),
				slog.String("media", string(media.Kind)),
				slog.String("err", err.Error()),
			)
		}
	}

	metrics.RequestCompleted()
	logger.Info(ctx, "relay", "relay.dispatch.ok",
		slog.String("request_id", req.ID),
		slog.Int("staff_message_id", headerID),
	)
	return s.reply(ctx, m.ChatID, s.texts.Submitted, KeyboardAgain)
}

// relayMessage posts a header and a verbatim copy of the message into the staff chat.
// Both are recorded so a reply to either reaches the user.
func (s *Service) relayMessage(ctx context.Context, m Message) error {
	staff := s.router.StaffChatID()

	headerID, err := s.out.SendText(ctx, staff, s.texts.MessageHeader(m.From), KeyboardNone)
	if err != nil {
		metrics.DispatchFailed("header")
		logger.Warn(ctx, "relay", "relay.header.fail", slog.String("err", err.Error()))
	} else {
		s.record(ctx, "header", headerID, m)
	}

	copyID, err := s.out.Copy(ctx, staff, m.ChatID, m.MessageID, "")
	if err != nil {
		metrics.DispatchFailed("message")
		return fmt.Errorf("relay message %d: %w", m.MessageID, err)
	}
	s.record(ctx, "message", copyID, m)
	return nil
}

func (s *Service) record(ctx context.Context, kind string, staffMessageID int, m Message) {
	if err := s.router.RecordForward(ctx, staffMessageID, m.ChatID, m.MessageID); err != nil {
		logger.Error(ctx, "relay", "relay.forward.record_fail",
			slog.String("kind", kind),
			slog.String("err", err.Error()),
		)
		return
	}
	metrics.ForwardRecorded(kind)
}

// HandleStaff relays a staff reply back to the user whose message it answers.
// Anything that is not a human reply to a known message is ignored.
func (s *Service) HandleStaff(ctx context.Context, m Message) error {
	if !s.IsStaffChat(m.ChatID) || m.ReplyToID == 0 || m.From.IsBot {
		return nil
	}
	userChatID, ok := s.router.Resolve(ctx, m.ReplyToID)
	if !ok {
		metrics.StaffReply("unresolved")
		logger.Debug(ctx, "relay", "relay.reply.unresolved", slog.Int("reply_to", m.ReplyToID))
		return nil
	}

	prefix := s.texts.ReplyPrefix(m.From)
	var err error
	switch {
	case m.Input.Text != "":
		_, err = s.out.SendText(ctx, userChatID, prefix+format.EscapeHTML(m.Input.Text), KeyboardNone)
	case m.Input.Caption != "":
		caption := prefix + format.EscapeHTML(format.Truncate(m.Input.Caption, format.MaxCaptionLen-len([]rune(prefix))))
		_, err = s.out.Copy(ctx, userChatID, m.ChatID, m.MessageID, caption)
	default:
		_, err = s.out.Copy(ctx, userChatID, m.ChatID, m.MessageID, "")
	}
	if err != nil {
		metrics.StaffReply("failed")
		return fmt.Errorf("relay reply to chat %d: %w", userChatID, err)
	}
	metrics.StaffReply("delivered")
	logger.Info(ctx, "relay", "relay.reply.ok",
		slog.Int64("user_chat_id", userChatID),
		slog.Int64("staff_user_id", m.From.ID),
	)
	return nil
}

func (s *Service) reply(ctx context.Context, chatID int64, text string, kb Keyboard) error {
	if _, err := s.out.SendText(ctx, chatID, text, kb); err != nil {
		return fmt.Errorf("reply to chat %d: %w", chatID, err)
	}
	return nil
}
