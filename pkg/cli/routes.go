package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nna-wms/wmsconsole/pkg/cli/internal/output"
	"github.com/nna-wms/wmsconsole/pkg/console"
	"github.com/nna-wms/wmsconsole/pkg/menu"
)

var routesCmd = &cobra.Command{
	Use:   "routes [menu-file]",
	Short: "Print the route table a menu tree resolves to",
	Long: `Resolve a menu tree into the console's routes and print them in the order
they are mounted. Paths without a built page show as "placeholder".

The menu file defaults to menu.file from the configuration.`,
	Example: `  wmsconsole routes menus.yaml
  wmsconsole routes menus.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file := cfg.Menu.File
	if len(args) == 1 {
		file = args[0]
	}
	if file == "" {
		return errors.New("no menu file: pass one as an argument or set menu.file")
	}

	tree, err := menu.LoadFile(file)
	if err != nil {
		return err
	}

	srv, err := console.New(console.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("failed to create console: %w", err)
	}
	infos := menu.Describe(srv.Routes(tree))
	if len(infos) == 0 {
		output.Warn(cmd.ErrOrStderr(), "menu file %s has no routable paths", file)
	}

	return printResult(cmd, infos, func() {
		tbl := output.NewTable(cmd.OutOrStdout(), "ID", "PATH", "PAGE")
		for _, r := range infos {
			tbl.Row(r.ID, r.Path, r.Page)
		}
		_ = tbl.Flush()
	})
}
