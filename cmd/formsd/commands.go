package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	auth "github.com/mind-engage/formbuilder/internal/auth/middleware"
	"github.com/mind-engage/formbuilder/internal/template"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASS_HASH",
	Long: `Prints a bcrypt hash of the given password. Without an argument the
password is read from the first line of stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pw string
		if len(args) == 1 {
			pw = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			pw = strings.TrimRight(line, "\r\n")
		}
		if pw == "" {
			return fmt.Errorf("empty password")
		}
		h, err := auth.HashPassword(pw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var importTemplatesDir string

var importTemplatesCmd = &cobra.Command{
	Use:   "import-templates",
	Short: "Load builtin templates from YAML files into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := importTemplatesDir
		if dir == "" {
			dir = cfg.TemplatesDir
		}
		ts, err := template.LoadDir(dir)
		if err != nil {
			return err
		}
		dbh, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbh.Close()
		if err := template.NewSQLStore(dbh).Sync(cmd.Context(), ts); err != nil {
			return err
		}
		logger.Info("templates_imported", zap.String("dir", dir), zap.Int("count", len(ts)))
		return nil
	},
}

func init() {
	importTemplatesCmd.Flags().StringVar(&importTemplatesDir, "dir", "", "template directory (default $TEMPLATES_DIR)")
}
