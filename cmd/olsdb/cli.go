package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olsdb/olsdb/config"
	"github.com/olsdb/olsdb/replication"
	"github.com/olsdb/olsdb/session"
)

// commonFlags holds the flags shared by every subcommand.
type commonFlags struct {
	db         string
	table      string
	column     string
	src        string
	dst        string
	primaryKey string
	configPath string
}

func rootCmd() *cobra.Command {
	flags := &commonFlags{}

	root := &cobra.Command{
		Use:           "olsdb",
		Short:         "Replicated, log-shipped relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.db, "db", "", "database name")
	root.PersistentFlags().StringVar(&flags.table, "table", "", "table name")
	root.PersistentFlags().StringVar(&flags.column, "column", "", "column name")
	root.PersistentFlags().StringVar(&flags.src, "src", "", "source column name")
	root.PersistentFlags().StringVar(&flags.dst, "dst", "", "destination column name")
	root.PersistentFlags().StringVar(&flags.primaryKey, "primary_key", "", "comma-separated primary key column names")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to object-store config JSON")

	root.AddCommand(
		createTableCmd(flags),
		dropTableCmd(flags),
		addColumnCmd(flags),
		renameColumnCmd(flags),
		dropColumnCmd(flags),
		insertCmd(flags),
		updateCmd(flags),
		deleteCmd(flags),
		syncCmd(flags),
	)
	return root
}

// withSession opens a config-backed Session for flags.db and runs fn.
// If fn succeeds the pending transaction is committed; if fn fails its
// error is returned without committing. The Session is always closed.
func withSession(flags *commonFlags, fn func(ctx context.Context, s *session.Session) error) error {
	return withSessionContext(context.Background(), flags, fn)
}

// withSessionContext is withSession with an explicit ctx, so the sync
// subcommand can bind session lifetime to a cancellable, signal-aware
// context instead of context.Background().
func withSessionContext(ctx context.Context, flags *commonFlags, fn func(ctx context.Context, s *session.Session) error) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	ols, err := cfg.ObjectLogStore(ctx)
	if err != nil {
		return err
	}

	s, err := session.Open(ctx, flags.db, ols)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(ctx, s); err != nil {
		return err
	}
	return s.Commit(ctx)
}

func createTableCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create_table",
		Short: "Create a table with the given primary key columns",
		RunE: func(*cobra.Command, []string) error {
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.CreateTable(ctx, flags.table, splitCSV(flags.primaryKey))
			})
		},
	}
}

func dropTableCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "drop_table",
		Short: "Drop a table",
		RunE: func(*cobra.Command, []string) error {
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.DropTable(ctx, flags.table)
			})
		},
	}
}

func addColumnCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add_column",
		Short: "Add a column to a table",
		RunE: func(*cobra.Command, []string) error {
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.AddColumn(ctx, flags.table, flags.column)
			})
		},
	}
}

func renameColumnCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename_column",
		Short: "Rename a column, preserving its kind",
		RunE: func(*cobra.Command, []string) error {
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.RenameColumn(ctx, flags.table, flags.src, flags.dst)
			})
		},
	}
}

func dropColumnCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "drop_column",
		Short: "Drop a column from a table",
		RunE: func(*cobra.Command, []string) error {
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.DropColumn(ctx, flags.table, flags.column)
			})
		},
	}
}

func insertCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "insert",
		Short: "Insert a row; reads the row JSON object from stdin",
		RunE: func(*cobra.Command, []string) error {
			row, err := readJSONObject(os.Stdin)
			if err != nil {
				return err
			}
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.Insert(ctx, flags.table, row)
			})
		},
	}
}

func updateCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update rows; reads a JSON object with a where key from stdin",
		RunE: func(*cobra.Command, []string) error {
			body, err := readJSONObject(os.Stdin)
			if err != nil {
				return err
			}
			where, _ := body["where"].(map[string]any)
			delete(body, "where")

			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.Update(ctx, flags.table, body, where)
			})
		},
	}
}

func deleteCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete rows matching a where JSON object read from stdin",
		RunE: func(*cobra.Command, []string) error {
			where, err := readJSONObject(os.Stdin)
			if err != nil {
				return err
			}
			return withSession(flags, func(ctx context.Context, s *session.Session) error {
				return s.Delete(ctx, flags.table, where)
			})
		},
	}
}

func syncCmd(flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Follow the object log, applying new segments as they appear",
		RunE: func(*cobra.Command, []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := withSessionContext(ctx, flags, func(ctx context.Context, s *session.Session) error {
				return s.Follow(ctx, replication.FollowOptions{})
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func readJSONObject(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse stdin json: %w", err)
	}
	return obj, nil
}
