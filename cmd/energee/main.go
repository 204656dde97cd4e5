package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/energee/energee-site/internal/app"
	"github.com/energee/energee-site/internal/config"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errEnv := godotenv.Load(); errEnv != nil && !errors.Is(errEnv, fs.ErrNotExist) {
		log.WithError(errEnv).Warn("load .env failed")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if errRun := run(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags and dispatches to serve, migrate or create-admin.
func run(ctx context.Context, args []string) error {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	cfgPath := flags.String("config", "", "config file path (or env CONFIG_PATH)")
	port := flags.Int("port", 8080, "server port when the config and PORT are unset")
	username := flags.String("username", "", "admin username (create-admin)")
	password := flags.String("password", "", "admin password (create-admin)")
	if errParse := flags.Parse(args); errParse != nil {
		return errParse
	}

	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}

	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(*cfgPath)
	}

	switch command {
	case "serve":
		return app.RunServer(ctx, appCfg, *port)
	case "migrate":
		if errMigrate := app.Migrate(ctx, appCfg); errMigrate != nil {
			return errMigrate
		}
		log.Info("migrations applied")
		return nil
	case "create-admin":
		dsn, errDSN := config.LoadDatabaseDSN(config.ResolveConfigPath(appCfg.ConfigPath))
		if errDSN != nil {
			return errDSN
		}
		if errCreate := app.CreateAdminUser(dsn, *username, *password); errCreate != nil {
			return errCreate
		}
		log.WithField("username", strings.TrimSpace(*username)).Info("admin created")
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
