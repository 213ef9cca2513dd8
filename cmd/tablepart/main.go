// Command tablepart transforms ordinary tables into natively
// partitioned ones against a PostgreSQL-family database, per a
// configuration file enumerating which tables to partition and how.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"tablepart/internal/config"
	"tablepart/internal/engine"
	"tablepart/internal/log"
	"tablepart/internal/sink"
)

type rootFlags struct {
	database         string
	configPath       string
	genSampleConfig  bool
	sampleFormat     string
	sqlOutPath       string
	verbose          bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tablepart",
		Short: "Transform ordinary tables into natively partitioned tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.database, "database", "d", "", "database connection URL")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "configuration file path")
	cmd.Flags().BoolVarP(&flags.genSampleConfig, "gen-sample-config", "g", false, "emit a sample configuration to stdout and exit")
	cmd.Flags().StringVar(&flags.sampleFormat, "format", "yaml", "sample configuration format: yaml, json, or toml")
	cmd.Flags().StringVarP(&flags.sqlOutPath, "sql", "s", "", "write generated DDL/DML to this file instead of executing it")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, flags *rootFlags) error {
	log.SetVerbose(flags.verbose)

	if flags.genSampleConfig {
		out, err := config.GenerateSample(flags.sampleFormat)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	if flags.database == "" {
		return fmt.Errorf("-d/--database is required unless -g/--gen-sample-config is set")
	}
	if flags.configPath == "" {
		return fmt.Errorf("-c/--config is required unless -g/--gen-sample-config is set")
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", flags.database)
	if err != nil {
		return fmt.Errorf("opening database connection: %w", err)
	}
	defer db.Close()
	// The swap block's LOCK TABLE and both RENAMEs must share one
	// backend session; pinning the pool to a single connection is the
	// simplest way to guarantee that through database/sql.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	var sk sink.Sink
	if flags.sqlOutPath != "" {
		f, err := os.Create(flags.sqlOutPath)
		if err != nil {
			return fmt.Errorf("opening sql output file: %w", err)
		}
		defer f.Close()
		sk = sink.NewScriptSink(db, f)
		log.WithFile(flags.sqlOutPath).Infof("writing generated statements to script file")
	} else {
		sk = sink.NewLiveSink(db)
	}
	defer sk.Close()

	eng := engine.New(db, cfg, sk)
	return eng.Run(ctx)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
