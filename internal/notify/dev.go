package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"company-registration/backend/internal/devotp"
)

// DevNotifier keeps codes in a devotp store for GET /dev/otp instead of sending mail.
type DevNotifier struct {
	store devotp.Store
	log   logrus.FieldLogger
	nowF  func() time.Time
}

// NewDevNotifier returns a Notifier backed by store.
func NewDevNotifier(store devotp.Store, log logrus.FieldLogger) *DevNotifier {
	return &DevNotifier{store: store, log: log, nowF: time.Now}
}

// SendOTP stores the code until it expires. The code itself is never logged.
func (n *DevNotifier) SendOTP(ctx context.Context, msg OTPMessage) error {
	ttl := msg.ExpiresIn
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	n.store.Record(ctx, msg.To, devotp.Delivery{
		Code:      msg.Code,
		ExpiresAt: n.nowF().Add(ttl),
		Resent:    msg.Resent,
	})
	n.log.WithFields(logrus.Fields{"resent": msg.Resent}).Info("dev otp stored; read it from GET /dev/otp")
	return nil
}
