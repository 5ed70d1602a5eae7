package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ScheduleRefresh starts a cron job that refetches the catalog on spec, picking up
// edits made directly in the spreadsheet. It returns nil when spec is empty.
// Stop the returned scheduler on shutdown.
func (c *Controller) ScheduleRefresh(spec string, timeout time.Duration) (*cron.Cron, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	sched := cron.New(cron.WithParser(cronParser))
	_, err := sched.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("scheduled refresh panicked", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("scheduled refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("inventory: schedule refresh %q: %w", spec, err)
	}
	sched.Start()
	c.logger.Info("scheduled catalog refresh", zap.String("spec", spec))
	return sched, nil
}
