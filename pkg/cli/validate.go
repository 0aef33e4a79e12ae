package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nna-wms/wmsconsole/pkg/cli/internal/output"
	"github.com/nna-wms/wmsconsole/pkg/menu"
)

// ValidateOutput is the JSON form of the validate command.
type ValidateOutput struct {
	Valid   bool              `json:"valid"`
	Error   string            `json:"error,omitempty"`
	Sources map[string]string `json:"sources"`
	// MenuPaths counts the routable paths of menu.file, when set.
	MenuPaths int `json:"menuPaths,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration the same way serve does, validate it and show which
layer (default, file, env, flag) set each value. The fallback menu file, when
configured, is parsed too.`,
	Example: `  wmsconsole validate -c wms.yaml
  WMS_API_TIMEOUT=5s wmsconsole validate --json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := ValidateOutput{Valid: true, Sources: cfg.Sources}
	verr := cfg.Validate()
	if verr == nil && cfg.Menu.File != "" {
		tree, err := menu.LoadFile(cfg.Menu.File)
		if err != nil {
			verr = err
		} else {
			out.MenuPaths = len(menu.Paths(tree))
		}
	}
	if verr != nil {
		out.Valid = false
		out.Error = verr.Error()
	}

	if err := printResult(cmd, out, func() {
		w := cmd.OutOrStdout()
		tbl := output.NewTable(w, "FIELD", "SOURCE")
		fields := make([]string, 0, len(out.Sources))
		for f := range out.Sources {
			fields = append(fields, f)
		}
		slices.Sort(fields)
		for _, f := range fields {
			tbl.Row(f, out.Sources[f])
		}
		_ = tbl.Flush()
		if out.MenuPaths > 0 {
			fmt.Fprintf(w, "menu file: %d paths\n", out.MenuPaths)
		}
		if out.Valid {
			fmt.Fprintln(w, "configuration is valid")
		}
	}); err != nil {
		return err
	}
	return verr
}
