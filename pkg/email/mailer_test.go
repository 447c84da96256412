package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkit/notifier/pkg/email"
)

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   "customer@example.com",
		Subject:  "Order 1001 confirmed",
		BodyHTML: "<h1>Thanks!</h1>",
		Tag:      "order_confirmation",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*email.SendEmailParams)
		wantErr bool
	}{
		{name: "valid", mutate: func(*email.SendEmailParams) {}},
		{name: "valid without tag", mutate: func(p *email.SendEmailParams) { p.Tag = "" }},
		{name: "missing recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "" }, wantErr: true},
		{name: "invalid recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "not-an-address" }, wantErr: true},
		{name: "missing subject", mutate: func(p *email.SendEmailParams) { p.Subject = "" }, wantErr: true},
		{name: "missing body", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := validParams()
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "orders@shop.example.com",
		SupportEmail:         "support@shop.example.com",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		sender, err := email.NewPostmarkClient(valid)
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("support email optional", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.SupportEmail = ""
		_, err := email.NewPostmarkClient(cfg)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*email.Config)
	}{
		{name: "missing server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }},
		{name: "missing account token", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }},
		{name: "missing sender email", mutate: func(c *email.Config) { c.SenderEmail = "" }},
		{name: "invalid sender email", mutate: func(c *email.Config) { c.SenderEmail = "nope" }},
		{name: "invalid support email", mutate: func(c *email.Config) { c.SupportEmail = "nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			sender, err := email.NewPostmarkClient(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Nil(t, sender)
		})
	}
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		require.NoError(t, sender.SendEmail(context.Background(), validParams()))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile, jsonFile string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlFile = filepath.Join(dir, e.Name())
			case ".json":
				jsonFile = filepath.Join(dir, e.Name())
			}
		}
		require.NotEmpty(t, htmlFile)
		require.NotEmpty(t, jsonFile)

		body, err := os.ReadFile(htmlFile)
		require.NoError(t, err)
		assert.Equal(t, "<h1>Thanks!</h1>", string(body))

		meta, err := os.ReadFile(jsonFile)
		require.NoError(t, err)
		assert.Contains(t, string(meta), "customer@example.com")
		assert.True(t, strings.Contains(filepath.Base(htmlFile), "order_confirmation"))
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()

		sender := email.NewDevSender(t.TempDir())
		params := validParams()
		params.SendTo = ""

		assert.ErrorIs(t, sender.SendEmail(context.Background(), params), email.ErrInvalidParams)
	})
}
