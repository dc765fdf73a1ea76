package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/config"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/service/commands"
	"github.com/mamadbah2/herdcare/pkg/clients/anthropic"
	client "github.com/mamadbah2/herdcare/pkg/clients/whatsapp"
)

const (
	sendTimeout      = 10 * time.Second
	translateTimeout = 15 * time.Second

	invalidArgumentsReply = "I could not read that command."
	failureReply          = "Something went wrong while answering. Please try again later."
)

var (
	// ErrVerification rejects a webhook verification handshake.
	ErrVerification = errors.New("webhook verification failed")
	// ErrInvalidMessage rejects an outbound message without recipient or text.
	ErrInvalidMessage = errors.New("invalid outbound message")
	// ErrDelivery wraps failures reported by the WhatsApp API.
	ErrDelivery = errors.New("message delivery failed")
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	translator anthropic.Client
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. translator may be nil,
// in which case free text is parsed as a command directly.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, translator anthropic.Client, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		translator: translator,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", fmt.Errorf("%w: missing mode or verify token", ErrVerification)
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("%w: unsupported hub.mode %s", ErrVerification, mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", fmt.Errorf("%w: invalid verify token", ErrVerification)
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message of the payload and returns the first failure.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(s.toCommandText(ctx, text))
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, dispatchErr := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case errors.Is(dispatchErr, commands.ErrInvalidArguments):
		reply = invalidArgumentsReply + "\n" + commands.HelpText
		dispatchErr = nil
	case dispatchErr != nil:
		reply = failureReply
	}

	if err := s.send(ctx, msg.From, reply, false); err != nil {
		return err
	}
	return dispatchErr
}

// toCommandText turns free text into a slash command through the translator.
// Slash commands and untranslatable text pass through unchanged.
func (s *MetaWhatsAppService) toCommandText(ctx context.Context, text string) string {
	if s.translator == nil || models.IsSlashCommand(text) {
		return text
	}

	ctx, cancel := context.WithTimeout(ctx, translateTimeout)
	defer cancel()

	translated, err := s.translator.TranslateToCommand(ctx, text)
	if err != nil {
		if !errors.Is(err, anthropic.ErrNoCommand) {
			s.logger.Warn("command translation failed", zap.Error(err))
		}
		return text
	}
	s.logger.Debug("free text translated", zap.String("command", translated))
	return translated
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to, text := strings.TrimSpace(req.To), strings.TrimSpace(req.Message)
	if to == "" || text == "" {
		return fmt.Errorf("%w: recipient and text are required", ErrInvalidMessage)
	}
	return s.send(ctx, to, text, req.PreviewURL)
}

// SendDigest pushes a message to the configured digest recipient.
func (s *MetaWhatsAppService) SendDigest(ctx context.Context, text string) error {
	if s.cfg.Recipient == "" {
		return errors.New("no digest recipient configured")
	}
	return s.send(ctx, s.cfg.Recipient, text, false)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return strings.TrimSpace(msg.Text.Body)
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
