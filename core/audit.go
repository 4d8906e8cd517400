package core

import (
	"context"

	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/sirupsen/logrus"
)

// EventLogger records redemption and usage events to an external sink.
// Implementations should be non-blocking and best-effort; the Service only
// logs their errors.
type EventLogger interface {
	LogRedeemed(ctx context.Context, tierID string, rec entitlements.Record) error
	LogRejected(ctx context.Context, code string) error
	LogConsumed(ctx context.Context, rec entitlements.Record) error
}

// LogrusEventLogger writes events as structured log lines.
type LogrusEventLogger struct {
	Log logrus.FieldLogger
}

func (l LogrusEventLogger) logger() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

func (l LogrusEventLogger) LogRedeemed(ctx context.Context, tierID string, rec entitlements.Record) error {
	l.logger().WithFields(logrus.Fields{
		"event":       "redeemed",
		"tier":        tierID,
		"code":        rec.Code,
		"print_count": rec.PrintCount,
		"expires_at":  rec.ExpiresAt().UTC(),
	}).Info("entitlement redeemed")
	return nil
}

func (l LogrusEventLogger) LogRejected(ctx context.Context, code string) error {
	l.logger().WithFields(logrus.Fields{
		"event": "rejected",
		"code":  code,
	}).Info("code rejected")
	return nil
}

func (l LogrusEventLogger) LogConsumed(ctx context.Context, rec entitlements.Record) error {
	l.logger().WithFields(logrus.Fields{
		"event":       "consumed",
		"code":        rec.Code,
		"print_count": rec.PrintCount,
	}).Info("print consumed")
	return nil
}
