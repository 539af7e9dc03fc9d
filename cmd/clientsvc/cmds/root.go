package cmds

import (
	"clientsvc/internal/backends"
	"clientsvc/internal/pub"
	"clientsvc/internal/service"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "clientsvc",
		Short: "client records service",
		Long: fmt.Sprintf(`clientsvc (v%s)

CRUD service for client records stored in DynamoDB, Redis or memory.`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of clientsvc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clientsvc v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(tableCmd)
	RootCmd.AddCommand(clientsCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(importCmd)

	// empty values fall back to the environment variables read by backends.SettingsFromEnv
	f := RootCmd.PersistentFlags()
	f.String("backend", "", "store backend (ddb, redis, memory)")
	f.String("table", "", "table holding the client records")
	f.String("ddb-endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	f.String("region", "", "AWS region")
	f.String("redis-host", "", "Redis host")
	f.String("redis-port", "", "Redis port")
	f.Int("batch-concurrency", 0, "concurrent inserts during imports")
	f.String("events-topic-arn", "", "SNS topic receiving client change events")
	f.String("sns-endpoint", "", "SNS endpoint override")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
}

// initConfig loads .env files and binds CLIENTSVC_* environment variables.
func initConfig() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug("The .env file not found.")
	}

	viper.SetEnvPrefix("clientsvc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	level, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// settings merges the command line and CLIENTSVC_* values over the plain environment.
func settings() (backends.Settings, error) {
	st, err := backends.SettingsFromEnv()
	if err != nil {
		return st, err
	}
	override := func(dst *string, key string) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	override(&st.Backend, "backend")
	override(&st.Table, "table")
	override(&st.DDBEndpoint, "ddb-endpoint")
	override(&st.Region, "region")
	override(&st.RedisHost, "redis-host")
	override(&st.RedisPort, "redis-port")
	if n := viper.GetInt("batch-concurrency"); n > 0 {
		st.Concurrency = n
	}
	return st, nil
}

// openStore is replaced in tests to share one memory store between commands.
var openStore = func(cmd *cobra.Command) (backends.Store, error) {
	st, err := settings()
	if err != nil {
		return nil, err
	}
	return backends.Open(cmd.Context(), st)
}

// openService builds the client service, publishing change events when a topic is configured.
func openService(cmd *cobra.Command) (*service.ClientService, backends.Store, error) {
	store, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	var opts []service.Option
	if topic := viper.GetString("events-topic-arn"); topic != "" {
		snsClient, err := pub.NewSNSClient(cmd.Context(), viper.GetString("sns-endpoint"))
		if err != nil {
			return nil, nil, fmt.Errorf("sns client: %w", err)
		}
		opts = append(opts, service.WithPublisher(pub.NewSNS(snsClient), topic))
	}
	return service.NewClientService(store, opts...), store, nil
}
