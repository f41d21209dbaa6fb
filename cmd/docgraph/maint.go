package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (c *cli) exportCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "maint",
		Short:   "Copy the graph into a SQLite database",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.svc.ExportSQLite(cmd.Context(), path); err != nil {
				return err
			}
			st := c.svc.Store().Stats()
			return c.emit(cmd, map[string]interface{}{"path": path, "stats": st}, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d entities and %d relationships to %s\n", st.EntityCount, st.RelationshipCount, path)
			})
		},
	}
	cmd.Flags().StringVar(&path, "sqlite", "", "destination database file")
	_ = cmd.MarkFlagRequired("sqlite")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:     "import",
		GroupID: "maint",
		Short:   "Replace the graph with a SQLite export",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := c.svc.ImportSQLite(cmd.Context(), path)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no database at %s", path)
			}
			if err := c.save(); err != nil {
				return err
			}
			st := c.svc.Store().Stats()
			return c.emit(cmd, map[string]interface{}{"path": path, "stats": st}, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d entities and %d relationships from %s\n", st.EntityCount, st.RelationshipCount, path)
			})
		},
	}
	cmd.Flags().StringVar(&path, "sqlite", "", "source database file")
	_ = cmd.MarkFlagRequired("sqlite")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		GroupID: "maint",
		Short:   "Remove every entity, relationship and chunk",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.svc.Clear()
			if err := c.save(); err != nil {
				return err
			}
			return c.emit(cmd, c.svc.Store().Stats(), func(w io.Writer) {
				fmt.Fprintln(w, "Graph cleared")
			})
		},
	}
}

func (c *cli) backupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "backups",
		GroupID: "maint",
		Short:   "List saved copies of earlier graph files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.svc.Backups()
			if err != nil {
				return err
			}
			return c.emit(cmd, list, func(w io.Writer) {
				if !c.cfg.Backup.Enabled {
					fmt.Fprintln(w, "Backups are disabled")
					return
				}
				if len(list) == 0 {
					fmt.Fprintln(w, "No backups yet")
					return
				}
				for _, b := range list {
					fmt.Fprintf(w, "%s  %8d  %s\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Size, b.Path)
				}
			})
		},
	}
}
