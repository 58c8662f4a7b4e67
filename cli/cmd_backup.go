package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjk/catalog/backup"
	"github.com/kjk/catalog/store"
	"github.com/kjk/catalog/u"
)

func newBackupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up and restore catalog data files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create [file]",
		Short: "Create a backup (.pak, .pak.zst, .pak.br or .pak.gz)",
		Long:  "Create a backup of the store and genres files. Default destination is backups/catalog-<time>.pak.zst in the data directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			var dst string
			if len(args) > 0 {
				dst = args[0]
			} else {
				name := "catalog-" + time.Now().Format("20060102-150405") + ".pak.zst"
				dst = filepath.Join(e.cfg.BackupDir(), name)
			}
			if err = mkdirFor(dst); err != nil {
				return err
			}
			info, err := backup.Create(dst, e.store.Path(), e.genres.Path())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "backed up %d files to %s (%s)\n", len(info.Entries), dst, u.FormatSize(u.FileSize(dst)))
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list <file>",
		Short: "List files in a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := backup.List(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created: %s\n", info.Created.Local().Format("2006-01-02 15:04:05"))
			for _, e := range info.Entries {
				fmt.Fprintf(a.out, "%s\t%s\n", e.Path, u.FormatSize(e.Size))
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the store and genres files from a backup, replacing current ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			// parse the catalog first so a bad backup leaves current data alone
			d, err := backup.ReadFile(args[0], filepath.Base(e.store.Path()))
			if err != nil {
				return err
			}
			snap, err := store.ReadSnapshot(bytes.NewReader(d))
			if err != nil {
				return fmt.Errorf("backup '%s' has an unreadable catalog: %w", args[0], err)
			}
			targets := map[string]string{
				filepath.Base(e.genres.Path()): e.genres.Path(),
			}
			files, err := backup.RestoreFiles(args[0], targets)
			if err != nil {
				return err
			}
			if err = e.store.Replace(snap); err != nil {
				return err
			}
			files = append(files, e.store.Path())
			for _, path := range files {
				fmt.Fprintf(a.out, "restored %s\n", path)
			}
			_, err = fmt.Fprintf(a.out, "catalog has %d records\n", snap.Len())
			return err
		},
	})
	return cmd
}

func mkdirFor(path string) error {
	dir := filepath.Dir(path)
	if u.DirExists(dir) {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
