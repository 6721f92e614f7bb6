package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"civicreport/internal/config"
	"civicreport/internal/logging"
	"civicreport/internal/repository"
	"civicreport/internal/service"
)

const usage = `Usage: manage <command> [flags]

Commands:
  createsuperuser -name <name> -email <email> -password <password>
  promote-to-admin -email <email>
  list-users`

var errUsage = errors.New("invalid usage")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.App.Env, "warn")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, logger)
	authService := service.NewAuthService(userRepo, service.NewTokenService(cfg.Auth), logger)

	if err := run(context.Background(), os.Args[1:], authService, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, authService service.AuthService, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch command := args[0]; command {
	case "createsuperuser":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "login email")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args[1:]); err != nil || *name == "" || *email == "" || *password == "" {
			return errUsage
		}

		user, err := authService.CreateSuperuser(ctx, *name, *email, *password)
		if err != nil {
			if errors.Is(err, service.ErrUserAlreadyExists) {
				return fmt.Errorf("user with email %s already exists", *email)
			}
			return err
		}
		fmt.Fprintf(out, "Superuser %s created with id %d.\n", user.Email, user.ID)

	case "promote-to-admin":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		email := fs.String("email", "", "email of the user to promote")
		if err := fs.Parse(args[1:]); err != nil || *email == "" {
			return errUsage
		}

		promoted, err := authService.PromoteToAdmin(ctx, *email)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return fmt.Errorf("user with email %s not found", *email)
			}
			return err
		}
		if !promoted {
			fmt.Fprintf(out, "User %s is already an admin.\n", *email)
			return nil
		}
		fmt.Fprintf(out, "User %s promoted to admin.\n", *email)

	case "list-users":
		users, err := authService.ListUsers(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
		}
		return tw.Flush()

	default:
		return errUsage
	}
	return nil
}
