// Command issue-token mints a bearer token for local development.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyjia/claimflow/internal/auth"
	"github.com/garyjia/claimflow/internal/config"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

func main() {
	var (
		configPath string
		id         string
		name       string
		role       string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Mint a signed actor token",
		Example: "  issue-token --id s-100 --name \"Ann Lee\" --role approver\n" +
			"  export CLAIMFLOW_TOKEN=$(issue-token --id s-1 --role claimer)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			r, ok := entity.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}
			if name == "" {
				name = id
			}
			token, err := tokens.Issue(entity.Actor{ID: id, Role: r, DisplayName: name})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "path to the YAML config file")
	cmd.Flags().StringVar(&id, "id", "", "staff id carried as the token subject")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the id)")
	cmd.Flags().StringVar(&role, "role", "", "Claimer, Approver, Finance or Administrator")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("role")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
