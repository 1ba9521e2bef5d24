package config

import (
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr          string
	StaticDir     string
	CORSOrigins   []string
	MaxUploadSize int64
	ExtractRate   float64
	ExtractBurst  int
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("MSGBOX_ADDR"),
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory of static UI files served at /",
			Destination: &c.StaticDir,
			Sources:     cli.EnvVars("MSGBOX_STATIC_DIR"),
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin (repeatable)",
			Destination: &c.CORSOrigins,
			Sources:     cli.EnvVars("MSGBOX_CORS_ORIGINS"),
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum upload size in bytes, 0 for unlimited",
			Value:       64 << 20,
			Destination: &c.MaxUploadSize,
			Sources:     cli.EnvVars("MSGBOX_MAX_UPLOAD_SIZE"),
		},
		&cli.FloatFlag{
			Name:        "extract-rate",
			Usage:       "Allowed extraction requests per second, 0 for unlimited",
			Destination: &c.ExtractRate,
			Sources:     cli.EnvVars("MSGBOX_EXTRACT_RATE"),
		},
		&cli.IntFlag{
			Name:        "extract-burst",
			Usage:       "Burst size of the extraction rate limiter",
			Value:       1,
			Destination: &c.ExtractBurst,
			Sources:     cli.EnvVars("MSGBOX_EXTRACT_BURST"),
		},
	}
}
