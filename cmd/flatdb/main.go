package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/config"
	"github.com/tobsdb/flatdb/internal/conn"
	"github.com/tobsdb/flatdb/pkg"
)

var (
	v          = config.New()
	configFile string
)

var rootCmd = &cobra.Command{
	Use:          "flatdb",
	Short:        "Schema-aware, file-backed tabular store",
	Long:         "flatdb serves the tables described by a schema file over websockets and keeps their rows on disk.",
	SilenceUsage: true,
	RunE:         runServe,
}

var validateCmd = &cobra.Command{
	Use:   "validate [schema]",
	Short: "Check a schema file for errors",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (yaml, json or toml)")

	flags := rootCmd.Flags()
	flags.IntP("port", "p", 7085, "Listening port")
	flags.String("db", "", "Directory to save db data in")
	flags.StringP("schema", "s", "./schema.tdb", "Schema file used when the db directory holds no saved schema")
	flags.BoolP("mem", "m", false, "Keep everything in memory; nothing is written to disk")
	flags.Int("write-interval", 1000, "Milliseconds between writes to disk")
	flags.String("log-level", "error", "Log level: none, error or debug")

	for key, flag := range map[string]string{
		"port":           "port",
		"db_path":        "db",
		"schema_path":    "schema",
		"in_mem":         "mem",
		"write_interval": "write-interval",
		"log_level":      "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			pkg.FatalLog(err)
		}
	}

	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	pkg.SetLogLevel(cfg.Level())

	schema, err := openSchema(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return conn.NewServer(schema, cfg.WriteInterval()).Listen(ctx, cfg.Port)
}

// openSchema prefers the schema saved in the db directory. The schema file is only
// read when there is nothing saved yet, or when running in memory.
func openSchema(cfg *config.Config) (*builder.Schema, error) {
	if !cfg.InMem && builder.HasSavedSchema(cfg.DBPath) {
		schema, err := builder.LoadSchema(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if data, err := os.ReadFile(cfg.SchemaPath); err == nil && string(data) != schema.Source {
			pkg.WarnLog("schema file differs from the saved schema; using the saved schema")
		}
		pkg.InfoLog("loaded database from", cfg.DBPath)
		return schema, nil
	}

	data, err := os.ReadFile(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	schema, err := builder.ParseSchema(string(data))
	if err != nil {
		return nil, err
	}
	if !cfg.InMem {
		schema.SetBase(cfg.DBPath)
	}
	return schema, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	schema_path := "./schema.tdb"
	if len(args) > 0 {
		schema_path = args[0]
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Checking %s for errors\n", schema_path)

	schema_data, err := os.ReadFile(schema_path)
	if err != nil {
		return err
	}

	if _, err := builder.ParseSchema(string(schema_data)); err != nil {
		return fmt.Errorf("Invalid schema; %s", err.Error())
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Schema checks successful: Schema is valid")
	return nil
}
