// Command provision creates an Admin account. Admins cannot self-register
// over HTTP; this is the only way to create one.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/repository"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/security"
	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "provision: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var name, email, password string

	flagSet := pflag.NewFlagSet("provision", pflag.ContinueOnError)
	flagSet.StringVar(&name, "name", "", "display name of the admin")
	flagSet.StringVar(&email, "email", "", "login email of the admin")
	flagSet.StringVar(&password, "password", "", "password (default: $ADMIN_PASSWORD)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.LoadProvisionConfig()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := repository.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	identities := repository.NewMongoIdentityRepository(db, repository.NewMongoBreaker())
	registration := services.NewRegistrationService(identities, security.NewBcryptHasher(cfg.BcryptCost), nil, clock.Real())

	admin, err := registration.ProvisionAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}
	logger.Info("admin provisioned", "id", admin.ID, "email", admin.Email)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Create an Admin identity in the marketplace identity store.

Reads MONGO_URI, MONGO_DATABASE and BCRYPT_COST from the environment
(or .env). The password may be passed via ADMIN_PASSWORD instead of the
command line.

Usage:
  provision --name NAME --email EMAIL [--password PASSWORD]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
