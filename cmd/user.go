package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/database"
	"github.com/iliyamo/venue-ops/internal/model"
	"github.com/iliyamo/venue-ops/internal/repository"
)

var newUser struct {
	email    string
	name     string
	password string
	role     string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a staff account that can log in to the API",
	RunE:  runCreateUser,
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.email, "email", "", "login email (required)")
	f.StringVar(&newUser.name, "name", "", "display name (required)")
	f.StringVar(&newUser.password, "password", "", "initial password, at least 8 characters (required)")
	f.StringVar(&newUser.role, "role", "STAFF", "STAFF, MANAGER or ADMIN")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("password")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	role := strings.ToUpper(strings.TrimSpace(newUser.role))
	switch role {
	case "STAFF", "MANAGER", "ADMIN":
	default:
		return fmt.Errorf("unknown role %q", newUser.role)
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	u := &model.User{Email: newUser.email, Name: strings.TrimSpace(newUser.name), Role: role}
	err = repository.NewUserRepo(db).Create(ctx, u, newUser.password, cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return fmt.Errorf("a user with email %s already exists", u.Email)
	}
	if err != nil {
		return err
	}
	log.Info("user created", zap.String("user_id", u.ID), zap.String("email", u.Email), zap.String("role", u.Role))
	return nil
}
