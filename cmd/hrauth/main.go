package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/hrAuth/cmd/hrauth/internal/commands"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug logging." env:"HRAUTH_DEBUG"`
		Version kong.VersionFlag

		Serve   commands.ServeCmd   `cmd:"" help:"Run the HTTP API."`
		Tenant  commands.TenantCmd  `cmd:"" help:"Tenant code maintenance."`
		Secrets commands.SecretsCmd `cmd:"" help:"Print a fresh pair of token signing secrets."`
	}
)

func main() {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("hrauth"),
		kong.Description("Multi-tenant HR authentication service."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
