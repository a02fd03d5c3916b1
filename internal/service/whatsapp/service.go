package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/config"
	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/service/commands"
	"github.com/mamadbah2/milkcenter/internal/service/procurement"
	client "github.com/mamadbah2/milkcenter/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

const managerOnlyReply = "Only the centre manager can record collections and payments."

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
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message in payload. Status callbacks
// carry no messages and are ignored. The first delivery failure is returned
// after all messages were attempted.
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
		s.logger.Debug("skipping message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	if mutatesLedger(cmd) && !s.isManager(msg.From) {
		s.logger.Warn("rejected ledger write from non-manager", zap.String("from", msg.From), zap.String("command", string(cmd.Type)))
		return s.send(ctx, msg.From, managerOnlyReply, false)
	}

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = s.errorReply(cmd, err)
	}

	return s.send(ctx, msg.From, reply, false)
}

// SendOutbound lets internal operators and the scheduler push notifications.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.client.SendText(ctx, client.TextMessage{To: to, Body: body, PreviewURL: preview})
	if err != nil {
		return err
	}
	s.logger.Debug("message sent", zap.String("to", to), zap.String("message_id", id))
	return nil
}

func (s *MetaWhatsAppService) errorReply(cmd models.Command, err error) string {
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return commands.HelpText
	case errors.Is(err, commands.ErrInvalidArguments), errors.Is(err, procurement.ErrFarmerNotFound):
		return fmt.Sprintf("Could not run /%s: %s\n\n%s", cmd.Type, err, commands.HelpText)
	default:
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return "Something went wrong, please try again."
	}
}

// isManager reports whether sender may write to the ledger. Without a
// configured manager every sender may.
func (s *MetaWhatsAppService) isManager(sender string) bool {
	manager := normalizeNumber(s.cfg.ManagerID)
	return manager == "" || manager == normalizeNumber(sender)
}

func mutatesLedger(cmd models.Command) bool {
	return cmd.Type == models.CommandCollect || cmd.Type == models.CommandPay
}

// normalizeNumber strips the formatting people add to configured numbers;
// Meta sends bare digits.
func normalizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
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
