package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"alfabeta/internal/service"

	"github.com/spf13/cobra"
)

// opener opens the configured state store and returns a backup service over it
type opener func(ctx context.Context) (*service.BackupService, func(), error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "backup",
		Short: "AlfaBeta state backup tool",
		Long: `Exports, imports and resets the saved player progress and settings.

The store is selected with STORAGE_BACKEND (sql, local or memory); the sql
backend reads DATABASE_TYPE, DB_PATH and DATABASE_URL.`,
		SilenceUsage: true,
	}
	root.AddCommand(newExportCmd(open), newImportCmd(open), newResetCmd(open))
	return root
}

func newExportCmd(open opener) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress and settings to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Generate default filename if not provided
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}

			// Ensure directory exists
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			backup, closeStore, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := backup.Export(cmd.Context(), output); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export complete: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func newImportCmd(open opener) *cobra.Command {
	var (
		input string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import progress and settings from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file: %w", err)
			}

			backup, closeStore, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := backup.Import(cmd.Context(), input, force); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Import complete!")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input file path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing state")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newResetCmd(open opener) *cobra.Command {
	var settings, yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase player progress",
		Long:  "Erases player progress. With --settings the settings, including the parent PIN, return to their defaults.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all progress. Type 'yes' to confirm: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled")
					return nil
				}
			}

			backup, closeStore, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := backup.Reset(cmd.Context(), settings); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reset complete!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&settings, "settings", false, "also restore default settings and PIN")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
