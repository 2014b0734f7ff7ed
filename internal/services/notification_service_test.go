package services

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPasswordReset(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	svc := NewNotificationService(SMTPConfig{Host: "mail.local", Port: 1025, From: "no-reply@shop.in"}).(*notificationService)
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Nil(t, a)
		return nil
	}

	err := svc.SendPasswordReset(context.Background(), "owner@shop.in", "https://app/reset?token=abc")
	require.NoError(t, err)

	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, []string{"owner@shop.in"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Reset your InvoiceFlow password\r\n")
	assert.Contains(t, gotMsg, "https://app/reset?token=abc")
}

func TestSendEmail_RejectsHeaderInjection(t *testing.T) {
	svc := NewNotificationService(SMTPConfig{Host: "mail.local", Port: 25})

	err := svc.SendEmail(context.Background(), "a@b.c\r\nBcc: x@y.z", "hi", "body")
	assert.Error(t, err)
}
