// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the xls2pdf CLI, a client for the
// remote workbook-to-PDF conversion service. Conversions run either
// synchronously (one call) or asynchronously (submit, then poll a result
// identifier); the subcommands expose both paths plus resumable polling
// and local job history.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/xls2pdf/internal/secrets"
	"github.com/pdiddy/xls2pdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedHeaders holds credential headers loaded from the secrets directory
// at startup; they override any headers from the config file.
var loadedHeaders map[string]string

const (
	defaultTimeout   = 60 * time.Second
	defaultAttempts  = 12
	defaultDelay     = 5 * time.Second
	defaultUserAgent = "xls2pdf/0.1"
	defaultJobsDir   = "jobs"
)

// rootCmd is the base command for the xls2pdf CLI.
var rootCmd = &cobra.Command{
	Use:   "xls2pdf",
	Short: "Convert Excel workbooks to PDF through the conversion service",
	Long: `xls2pdf submits Excel workbooks to a remote conversion service and
retrieves the rendered PDFs. Conversions run asynchronously by default:
submit returns a result identifier, and the client polls it until the
document is ready. The sync variant collapses submit and retrieval into a
single call.

Jobs are recorded in a local history database so interrupted polls can be
resumed with the result identifier instead of resubmitting the workbook.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		h, err := secrets.LoadHeaders(dir)
		if err != nil {
			return err
		}
		loadedHeaders = h
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./xls2pdf.yaml or ~/.config/xls2pdf/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files sent as request headers")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("xls2pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "xls2pdf"))
		}
	}

	viper.SetEnvPrefix("XLS2PDF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// addServiceFlags registers the endpoint and HTTP flags shared by the
// subcommands that talk to the service.
func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("submit-url", "", "submit endpoint URL")
	cmd.Flags().String("get-url", "", "poll endpoint URL")
	cmd.Flags().String("api-url", "", "synchronous conversion endpoint URL")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().Int("attempts", 0, "maximum poll attempts (default 12)")
	cmd.Flags().Duration("delay", -1, "delay between poll attempts (default 5s)")
	cmd.Flags().String("jobs-dir", "", "job history directory (default jobs)")
}

// buildClientConfig resolves settings with flag > config file > default
// precedence. Credential headers from the secrets directory override
// config-file headers of the same name.
func buildClientConfig(cmd *cobra.Command) types.ClientConfig {
	cfg := types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", "timeout", defaultTimeout),
			UserAgent: stringDefault(viper.GetString("user_agent"), defaultUserAgent),
		},
		Service: types.ServiceConfig{
			SubmitURL: stringSetting(cmd, "submit-url", "service.submit_url"),
			GetURL:    stringSetting(cmd, "get-url", "service.get_url"),
			APIURL:    stringSetting(cmd, "api-url", "service.api_url"),
			Headers:   secrets.Merge(viper.GetStringMapString("service.headers"), loadedHeaders),
		},
		Poll: types.PollConfig{
			MaxAttempts: intSetting(cmd, "attempts", "poll.max_attempts", defaultAttempts),
			Delay:       delaySetting(cmd),
		},
		SubmitDelay: viper.GetDuration("submit_delay"),
		JobsDir:     stringDefault(stringSetting(cmd, "jobs-dir", "jobs_dir"), defaultJobsDir),
	}
	return cfg
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(key)
}

func durationSetting(cmd *cobra.Command, flag, key string, def time.Duration) time.Duration {
	if v, _ := cmd.Flags().GetDuration(flag); v != 0 {
		return v
	}
	if v := viper.GetDuration(key); v != 0 {
		return v
	}
	return def
}

func intSetting(cmd *cobra.Command, flag, key string, def int) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return def
}

// delaySetting keeps an explicit --delay 0 distinct from "flag not set":
// the flag default is -1, and zero is a valid configured delay.
func delaySetting(cmd *cobra.Command) time.Duration {
	if v, _ := cmd.Flags().GetDuration("delay"); v >= 0 {
		return v
	}
	if viper.IsSet("poll.delay") {
		return viper.GetDuration("poll.delay")
	}
	return defaultDelay
}

func stringDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
