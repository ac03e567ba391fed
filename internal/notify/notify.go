// Package notify delivers low balance alerts.
package notify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
)

const alertSubject = "Low Balance Alert"

// Notifier sends a low balance alert to a user.
type Notifier interface {
	SendLowBalanceAlert(ctx context.Context, email string, balance decimal.Decimal) error
}

// AlertBody renders the fixed alert template.
func AlertBody(balance decimal.Decimal) string {
	return fmt.Sprintf("Low Balance Alert: balance is %s", core.FormatAmount(balance))
}

// LogNotifier writes alerts to the log. Used when no mail relay is configured.
type LogNotifier struct {
	logger *applog.Logger
}

func NewLogNotifier(logger *applog.Logger) *LogNotifier {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LogNotifier{logger: logger.WithComponent(applog.ComponentNotify)}
}

func (n *LogNotifier) SendLowBalanceAlert(ctx context.Context, email string, balance decimal.Decimal) error {
	n.logger.WarnContext(ctx, AlertBody(balance),
		applog.FieldOwnerEmail, email,
		applog.FieldBalance, core.FormatAmount(balance),
		applog.FieldOperation, applog.OpNotify)
	return nil
}
