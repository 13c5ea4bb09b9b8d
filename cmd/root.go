package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"db-mirror/internal/connector"
	"db-mirror/internal/dialect"
	"db-mirror/internal/provider"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	log = logrus.New()
)

var RootCmd = &cobra.Command{
	Use:   "db-mirror",
	Short: "A database schema & data reconciliation tool",
	Long: `
  ____  ____    __  __ ___ ____  ____   ___  ____
 |  _ \|  _ \  |  \/  |_ _|  _ \|  _ \ / _ \|  _ \
 | | | | |_) | | |\/| || || |_) | |_) | | | | |_) |
 | |_| |  _ <  | |  | || ||  _ <|  _ <| |_| |  _ <
 |____/|_| \_\ |_|  |_|___|_| \_\_| \_\\___/|_| \_\

DB MIRROR - Schema Diff, Migration & Data Sync
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-mirror.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	RootCmd.PersistentFlags().String("source-engine", "", "source engine (mysql, postgres, sqlserver, oracle, sqlite)")
	RootCmd.PersistentFlags().String("source-dsn", "", "source DSN")
	RootCmd.PersistentFlags().String("target-engine", "", "target engine")
	RootCmd.PersistentFlags().String("target-dsn", "", "target DSN")

	viper.BindPFlag("source.engine", RootCmd.PersistentFlags().Lookup("source-engine"))
	viper.BindPFlag("source.dsn", RootCmd.PersistentFlags().Lookup("source-dsn"))
	viper.BindPFlag("target.engine", RootCmd.PersistentFlags().Lookup("target-engine"))
	viper.BindPFlag("target.dsn", RootCmd.PersistentFlags().Lookup("target-dsn"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-mirror")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// NewRegistry builds the engine registry once; operations receive it by
// reference rather than looking adapters up ambiently.
func NewRegistry() *provider.Registry {
	openers := make(map[string]provider.OpenFunc)
	for _, d := range dialect.All() {
		d := d
		openers[d.Name()] = func(dsn string) (provider.Session, error) {
			return connector.Open(d, dsn)
		}
	}
	// mssql is a common alias for the sqlserver engine name.
	openers["mssql"] = openers["sqlserver"]
	return provider.NewRegistry(openers)
}

// openPair opens one session per endpoint; each operation checks out its
// own pair for its whole lifetime.
func openPair() (source, target provider.Session, err error) {
	src, tgt, err := GetEndpoints()
	if err != nil {
		return nil, nil, err
	}
	reg := NewRegistry()

	source, err = reg.Open(src.Engine, src.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("source %s: %w", src.Name, err)
	}
	target, err = reg.Open(tgt.Engine, tgt.DSN)
	if err != nil {
		source.Close()
		return nil, nil, fmt.Errorf("target %s: %w", tgt.Name, err)
	}
	log.Infof("Source: %s (%s)  Target: %s (%s)", src.Name, src.Engine, tgt.Name, tgt.Engine)
	return source, target, nil
}
