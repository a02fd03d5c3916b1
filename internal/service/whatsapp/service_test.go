package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/milkcenter/internal/config"
	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/service/commands"
	client "github.com/mamadbah2/milkcenter/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.TextMessage
	err  error
}

func (f *fakeClient) SendText(_ context.Context, msg client.TextMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("wamid.%d", len(f.sent)), nil
}

type stubDispatcher struct {
	reply string
	err   error
	seen  []models.Command
}

func (d *stubDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	d.seen = append(d.seen, cmd)
	return d.reply, d.err
}

func textPayload(from string, bodies ...string) models.WebhookPayload {
	messages := make([]models.InboundMessage, 0, len(bodies))
	for i, body := range bodies {
		messages = append(messages, models.InboundMessage{
			From: from, ID: fmt.Sprintf("m%d", i), Type: "text", Text: &models.TextContent{Body: body},
		})
	}
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: messages}}},
	}}}
}

func newTestService(t *testing.T, c client.Client, d commands.Dispatcher) *MetaWhatsAppService {
	t.Helper()
	return NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "verify-me"}, c, d, zaptest.NewLogger(t))
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := newTestService(t, &fakeClient{}, &stubDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "verify-me", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "verify-me", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	assert.Error(t, err)
}

func TestHandleWebhookRepliesWithDispatcherOutput(t *testing.T) {
	fc := &fakeClient{}
	disp := &stubDispatcher{reply: "Collection saved."}
	svc := newTestService(t, fc, disp)

	err := svc.HandleWebhook(context.Background(), textPayload("9198", "/collect F001 morning 10"))
	require.NoError(t, err)

	require.Len(t, disp.seen, 1)
	assert.Equal(t, models.CommandCollect, disp.seen[0].Type)
	require.Len(t, fc.sent, 1)
	assert.Equal(t, client.TextMessage{To: "9198", Body: "Collection saved."}, fc.sent[0])
}

func TestHandleWebhookErrorReplies(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "unsupported", err: commands.ErrUnsupportedCommand, contains: commands.HelpText},
		{name: "invalid arguments", err: fmt.Errorf("%w: bad liters", commands.ErrInvalidArguments), contains: "Could not run /collect"},
		{name: "unexpected", err: errors.New("boom"), contains: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			svc := newTestService(t, fc, &stubDispatcher{err: tt.err})

			require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("9198", "/collect")))
			require.Len(t, fc.sent, 1)
			assert.Contains(t, fc.sent[0].Body, tt.contains)
		})
	}
}

func TestHandleWebhookSkipsNonText(t *testing.T) {
	fc := &fakeClient{}
	disp := &stubDispatcher{reply: "ok"}
	svc := newTestService(t, fc, disp)

	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: []models.InboundMessage{
			{From: "9198", ID: "img", Type: "image"},
			{From: "9198", ID: "btn", Type: "interactive", Interactive: &models.InteractiveContent{
				ButtonReply: &models.ReplyPick{ID: "/summary", Title: "Summary"},
			}},
		}}}},
	}}}

	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	require.Len(t, disp.seen, 1)
	assert.Equal(t, models.CommandSummary, disp.seen[0].Type)
	assert.Len(t, fc.sent, 1)
}

func TestHandleWebhookReturnsFirstSendError(t *testing.T) {
	sendErr := errors.New("network down")
	svc := newTestService(t, &fakeClient{err: sendErr}, &stubDispatcher{reply: "ok"})

	err := svc.HandleWebhook(context.Background(), textPayload("9198", "/top", "/summary"))
	assert.ErrorIs(t, err, sendErr)
}

func TestSendOutbound(t *testing.T) {
	fc := &fakeClient{}
	svc := newTestService(t, fc, &stubDispatcher{})

	err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "9199", Message: "Daily summary", PreviewURL: true})
	require.NoError(t, err)
	assert.Equal(t, []client.TextMessage{{To: "9199", Body: "Daily summary", PreviewURL: true}}, fc.sent)
}

func TestHandleWebhookRestrictsLedgerWritesToManager(t *testing.T) {
	fc := &fakeClient{}
	disp := &stubDispatcher{reply: "ok"}
	cfg := config.WhatsAppConfig{VerifyToken: "verify-me", ManagerID: "+91 98000 00000"}
	svc := NewMetaWhatsAppService(cfg, fc, disp, zaptest.NewLogger(t))

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("919811111111", "/collect F001 morning 10", "/pay F001 100", "/balance F001")))
	require.Len(t, disp.seen, 1)
	assert.Equal(t, models.CommandBalance, disp.seen[0].Type)
	require.Len(t, fc.sent, 3)
	assert.Equal(t, managerOnlyReply, fc.sent[0].Body)
	assert.Equal(t, managerOnlyReply, fc.sent[1].Body)
	assert.Equal(t, "ok", fc.sent[2].Body)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("919800000000", "/collect F001 morning 10")))
	require.Len(t, disp.seen, 2)
	assert.Equal(t, models.CommandCollect, disp.seen[1].Type)
}
