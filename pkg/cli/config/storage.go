package config

import (
	"github.com/m-mizutani/msgbox/pkg/infra/staging"
	"github.com/urfave/cli/v3"
)

// Storage holds staging area configuration
type Storage struct {
	DataDir string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory holding uploads/ and extracted/",
			Value:       ".",
			Destination: &c.DataDir,
			Sources:     cli.EnvVars("MSGBOX_DATA_DIR"),
		},
	}
}

// Configure creates the staging store and its directories
func (c *Storage) Configure() (*staging.Store, error) {
	store, err := staging.NewOS(c.DataDir)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		return nil, err
	}
	return store, nil
}
