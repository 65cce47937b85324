package cmd

import (
	"fmt"
	"time"

	"github.com/pilab-dev/shadow-social/config"
	"github.com/pilab-dev/shadow-social/log"
	"github.com/spf13/cobra"
)

type debugTokenResult struct {
	AppID     string    `json:"app_id" yaml:"app_id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	IsValid   bool      `json:"is_valid" yaml:"is_valid"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
	Scopes    []string  `json:"scopes" yaml:"scopes"`
}

func newDebugTokenCmd() *cobra.Command {
	var appID, appSecret string

	debugCmd := &cobra.Command{
		Use:   "debug-token [file]",
		Short: "Ask Facebook about the stored access token",
		Long: `Calls the Graph API /debug_token endpoint with the app access token.
App credentials default to the server configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appID == "" || appSecret == "" {
				cfg, err := config.LoadConfigFile(cfgFile)
				if err != nil {
					return err
				}
				app := cfg.FacebookApp()
				if appID == "" {
					appID = app.AppID
				}
				if appSecret == "" {
					appSecret = app.AppSecret
				}
			}
			if appID == "" || appSecret == "" {
				return fmt.Errorf("facebook app id and secret are required")
			}

			data, err := readProperty(cmd, args)
			if err != nil {
				return err
			}

			appLogger.Debug(cmd.Context(), "Calling debug_token", log.Fields{"app_id": appID})

			info, err := data.GetService().DebugToken(cmd.Context(), appID+"|"+appSecret)
			if err != nil {
				return err
			}

			result := debugTokenResult{
				AppID:   info.AppID,
				UserID:  info.UserID,
				IsValid: info.IsValid,
				Scopes:  info.Scopes,
			}
			if info.ExpiresAt > 0 {
				result.ExpiresAt = time.Unix(info.ExpiresAt, 0).UTC()
			}

			return printValue(cmd, result)
		},
	}

	debugCmd.Flags().StringVar(&appID, "app-id", "", "Facebook app ID")
	debugCmd.Flags().StringVar(&appSecret, "app-secret", "", "Facebook app secret")

	return debugCmd
}
