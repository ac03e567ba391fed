package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"

	applog "budgetbuddy/internal/log"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func TestAlertBody(t *testing.T) {
	tests := []struct {
		balance decimal.Decimal
		want    string
	}{
		{decimal.NewFromInt(300), "Low Balance Alert: balance is 300.00"},
		{decimal.RequireFromString("-12.5"), "Low Balance Alert: balance is -12.50"},
	}
	for _, tt := range tests {
		if got := AlertBody(tt.balance); got != tt.want {
			t.Errorf("AlertBody(%s) = %q, want %q", tt.balance, got, tt.want)
		}
	}
}

func TestMailerSendsTemplate(t *testing.T) {
	fake := &fakeSender{}
	m := newMailer("alerts@budgetbuddy.test", fake, nil)

	if err := m.SendLowBalanceAlert(context.Background(), "u@example.com", decimal.NewFromInt(300)); err != nil {
		t.Fatalf("SendLowBalanceAlert() error = %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}

	msg := fake.sent[0]
	rcpts, err := msg.GetRecipients()
	if err != nil {
		t.Fatal(err)
	}
	if len(rcpts) != 1 || rcpts[0] != "u@example.com" {
		t.Errorf("recipients = %v", rcpts)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	raw := buf.String()
	for _, want := range []string{"Subject: Low Balance Alert", "Low Balance Alert: balance is 300.00"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q:\n%s", want, raw)
		}
	}
}

func TestMailerErrors(t *testing.T) {
	t.Run("relay failure is returned", func(t *testing.T) {
		m := newMailer("alerts@budgetbuddy.test", &fakeSender{err: errors.New("relay down")}, nil)
		err := m.SendLowBalanceAlert(context.Background(), "u@example.com", decimal.NewFromInt(1))
		if err == nil || !strings.Contains(err.Error(), "relay down") {
			t.Errorf("expected relay error, got %v", err)
		}
	})

	t.Run("bad recipient", func(t *testing.T) {
		fake := &fakeSender{}
		m := newMailer("alerts@budgetbuddy.test", fake, nil)
		if err := m.SendLowBalanceAlert(context.Background(), "not an address", decimal.NewFromInt(1)); err == nil {
			t.Error("expected error for invalid recipient")
		}
		if len(fake.sent) != 0 {
			t.Error("nothing should be sent for an invalid recipient")
		}
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(applog.New(applog.Config{Output: &buf, Level: slog.LevelInfo}))

	if err := n.SendLowBalanceAlert(context.Background(), "u@example.com", decimal.NewFromInt(300)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "balance is 300.00") || !strings.Contains(out, "owner_email=u@example.com") {
		t.Errorf("unexpected log output %q", out)
	}
}
