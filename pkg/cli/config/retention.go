package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Retention holds cleanup policy configuration
type Retention struct {
	MaxAge   time.Duration
	Schedule string
}

// Flags returns CLI flags for retention configuration
func (c *Retention) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "retention-max-age",
			Usage:       "Delete uploads and extracted folders older than this, 0 keeps everything",
			Value:       0,
			Destination: &c.MaxAge,
			Sources:     cli.EnvVars("MSGBOX_RETENTION_MAX_AGE"),
		},
		&cli.StringFlag{
			Name:        "retention-schedule",
			Usage:       "Cron schedule of the retention sweep",
			Value:       "@hourly",
			Destination: &c.Schedule,
			Sources:     cli.EnvVars("MSGBOX_RETENTION_SCHEDULE"),
		},
	}
}

// Enabled reports whether expired data should be removed
func (c *Retention) Enabled() bool {
	return c.MaxAge > 0
}
