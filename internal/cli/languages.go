package cli

import (
	"fmt"

	"github.com/fmueller/vidsub/internal/language"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newLanguagesCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages subtitles can be translated to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), languagesTable(language.Catalog()))
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	return cmd
}

func languagesTable(catalog []language.Selection) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Language", "Code", "Native name"})
	for _, sel := range catalog {
		tw.AppendRow(table.Row{sel.DisplayName, sel.Code, sel.NativeName()})
	}
	return tw.Render()
}
