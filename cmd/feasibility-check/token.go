package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func tokenCmd(app *cliApp) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Env == config.EnvProduction {
				app.logger.Warn("issuing a token against the production secret", zap.String("user_id", userID))
			}

			auth := service.NewAuthService(app.logger, service.AuthConfig{
				AccessTokenSecret: cfg.JWT.Secret,
				AccessTokenExpiry: ttl,
				Issuer:            cfg.JWT.Issuer,
			})
			token, expiresAt, err := auth.IssueToken(userID, models.UserRole(strings.ToUpper(role)))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			app.logger.Info("token issued", zap.String("user_id", userID), zap.Time("expires_at", expiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role: SUPERADMIN, ADMIN, TEACHER or STUDENT")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
