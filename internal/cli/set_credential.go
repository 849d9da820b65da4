package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/trendlake/internal/core/config"
	"github.com/vietddude/trendlake/internal/core/domain"
	redisclient "github.com/vietddude/trendlake/internal/infra/redis"
)

var setCredentialCmd = &cobra.Command{
	Use:   "set-credential [period] [primary|emergency] [key]",
	Short: "Store an API key for a period in the Redis credential store",
	Args:  cobra.ExactArgs(3),
	Run:   runSetCredential,
}

func init() {
	rootCmd.AddCommand(setCredentialCmd)
}

func runSetCredential(cmd *cobra.Command, args []string) {
	period, err := domain.ParsePeriod(args[0])
	if err != nil {
		fmt.Printf("Invalid period: %v\n", err)
		os.Exit(1)
	}
	tier := domain.Tier(args[1])
	if tier != domain.TierPrimary && tier != domain.TierEmergency {
		fmt.Printf("Invalid tier %q: want primary or emergency\n", args[1])
		os.Exit(1)
	}

	cfg := loadConfig()
	if cfg.Credentials.Source != config.CredentialSourceRedis {
		slog.Error("credentials.source is not redis", "source", cfg.Credentials.Source)
		os.Exit(1)
	}

	rc, err := redisclient.NewClient(cfg.Credentials.Redis.Config)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rc.Close()
	}()

	prefix := cfg.Credentials.Redis.KeyPrefix
	if err := rc.SetCredential(context.Background(), prefix, string(period), string(tier), args[2]); err != nil {
		slog.Error("Failed to store credential", "error", err)
		os.Exit(1)
	}

	cred := domain.Credential{Token: args[2], Tier: tier, Period: period}
	fmt.Printf("Stored %s under %s\n", cred, redisclient.CredentialKey(prefix, string(period)))
}
