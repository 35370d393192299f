package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shainyguy/followercity/internal/persistence"
	"github.com/shainyguy/followercity/internal/roster"
)

const defaultDB = "followercity.db"

func rosterCmd(load loadFunc) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the SQLite follower roster",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "roster database (default: config roster.database or "+defaultDB+")")

	open := func() (*persistence.DB, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		path := dbPath
		if path == "" {
			path = cfg.Roster.Database
		}
		if path == "" {
			path = defaultDB
		}
		return persistence.Open(path)
	}

	cmd.AddCommand(rosterImportCmd(open))
	cmd.AddCommand(rosterListCmd(open))
	cmd.AddCommand(rosterAddCmd(open))
	cmd.AddCommand(rosterRemoveCmd(open))
	return cmd
}

type openFunc func() (*persistence.DB, error)

func rosterImportCmd(open openFunc) *cobra.Command {
	var sample bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the stored roster with a YAML or JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var list []roster.Follower
			switch {
			case sample:
				list = roster.Sample()
			case len(args) == 1:
				var err error
				if list, err = roster.LoadFile(args[0]); err != nil {
					return err
				}
			default:
				return fmt.Errorf("import needs a file or --sample")
			}

			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ReplaceAll(context.Background(), list); err != nil {
				return err
			}
			fmt.Printf("Imported %s followers.\n", humanize.Comma(int64(len(list))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&sample, "sample", false, "import the bundled sample roster")
	return cmd
}

func rosterListCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the stored roster",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := db.Load(context.Background())
			if err != nil {
				return err
			}
			printRoster(list)
			return nil
		},
	}
}

func printRoster(list []roster.Follower) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tJOINED\tAVATAR")
	for _, f := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Username, humanize.Time(f.JoinedAt), f.Avatar)
	}
	w.Flush()

	today := roster.JoinedSince(list, roster.StartOfDay(time.Now()))
	fmt.Printf("\n%s followers, %s joined today\n", humanize.Comma(int64(len(list))), humanize.Comma(int64(today)))
}

func rosterAddCmd(open openFunc) *cobra.Command {
	var (
		avatar string
		joined string
	)

	cmd := &cobra.Command{
		Use:   "add <id> <username>",
		Short: "Add or update one follower",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			f := roster.Follower{ID: args[0], Username: args[1], Avatar: avatar, JoinedAt: time.Now().UTC()}
			if joined != "" {
				t, err := time.Parse(time.RFC3339, joined)
				if err != nil {
					return fmt.Errorf("parsing --joined: %w", err)
				}
				f.JoinedAt = t
			}

			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Upsert(context.Background(), f); err != nil {
				return err
			}
			fmt.Printf("Saved @%s (%s).\n", f.Username, f.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL or file path")
	cmd.Flags().StringVar(&joined, "joined", "", "join time, RFC 3339 (default: now)")
	return cmd
}

func rosterRemoveCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove one follower",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Remove(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s.\n", args[0])
			return nil
		},
	}
}
