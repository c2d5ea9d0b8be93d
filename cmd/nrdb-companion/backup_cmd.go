package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
)

func newBackupCmd(a *app) *cobra.Command {
	var (
		list    bool
		restore string
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up or restore the collection file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			path := a.collectionPath()
			bm := collection.NewBackupManager(path, dir)

			if list {
				backups, err := bm.ListBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Fprintf(w, "No backups in %s\n", bm.Dir())
					return nil
				}
				tbl := output.NewTable("NAME", "SIZE", "CREATED", "SHA-256")
				for _, b := range backups {
					tbl.Row(b.Name, formatBytes(b.Size), b.ModTime.Local().Format("2006-01-02 15:04:05"), b.Checksum[:min(12, len(b.Checksum))])
				}
				fmt.Fprintln(w, tbl.String())
				return nil
			}

			if restore != "" {
				if !collection.Exists(restore) {
					return NewExitError(fmt.Errorf("backup file not found: %s", restore), ExitNotFound)
				}
				if err := bm.Restore(restore); err != nil {
					return err
				}
				output.Debug("Collection restored", "from", restore, "to", path)
				fmt.Fprintf(w, "Restored %s from %s\n", path, restore)
				return nil
			}

			if !collection.Exists(path) {
				return NewExitError(
					fmt.Errorf("collection file not found: %s (run 'nrdb-companion init' first)", path),
					ExitNotFound)
			}
			backupPath, err := bm.Backup()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Backup saved to: %s\n", backupPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List existing backups")
	cmd.Flags().StringVar(&restore, "restore", "", "Restore the collection from a backup file")
	cmd.Flags().StringVar(&dir, "dir", "", "Backup directory (default: backups/ next to the collection)")
	cmd.MarkFlagsMutuallyExclusive("list", "restore")
	return cmd
}
