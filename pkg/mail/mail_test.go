package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ItsOuaail/aptiv-interns-platform/pkg/config"
)

func TestNewSMTPSenderValidatesConfig(t *testing.T) {
	_, err := NewSMTPSender(config.MailConfig{From: "hr@aptiv.com"})
	assert.Error(t, err)

	_, err = NewSMTPSender(config.MailConfig{Host: "localhost"})
	assert.Error(t, err)

	sender, err := NewSMTPSender(config.MailConfig{Host: "localhost", Port: 1025, From: "hr@aptiv.com", Username: "u", Password: "p", Timeout: time.Second})
	require.NoError(t, err)
	assert.NotEmpty(t, sender.options)
}

func TestSMTPSenderRejectsInvalidRecipient(t *testing.T) {
	sender, err := NewSMTPSender(config.MailConfig{Host: "localhost", Port: 1025, From: "hr@aptiv.com", Timeout: time.Second})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "not an address", "Hi", "Body")
	assert.Error(t, err)
}

func TestLogSenderDoesNotLogBody(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	err := sender.Send(context.Background(), "intern@aptiv.com", "Welcome", "password: s3cret")
	require.ErrorIs(t, err, ErrDeliveryDisabled)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "intern@aptiv.com", entry.ContextMap()["to"])
	for _, v := range entry.ContextMap() {
		if str, ok := v.(string); ok {
			assert.NotContains(t, str, "s3cret")
		}
	}
}
