package core

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSweepSpec runs the expiry sweep every ten minutes.
const DefaultSweepSpec = "@every 10m"

// ScheduleSweep purges expired records from sw on a cron schedule until ctx
// is done. Status already purges lazily; the sweep only keeps shared
// backends from accumulating records nobody reads again.
func ScheduleSweep(ctx context.Context, sw Sweeper, spec string, clock Clock, log logrus.FieldLogger) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		sctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		n, err := sw.Sweep(sctx, clock.Now())
		if err != nil {
			log.WithError(err).Warn("expiry sweep failed")
			return
		}
		if n > 0 {
			log.WithField("purged", n).Info("expiry sweep")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", spec, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
