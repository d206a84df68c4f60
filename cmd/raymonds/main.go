// Command raymonds serves the RaymondsIndex dashboard and answers the same
// queries from the terminal.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/raymonds/internal/app"
	"github.com/bobmcallan/raymonds/internal/common"
)

// cli carries flag values and the lazily built App across subcommands.
type cli struct {
	configPath string
	plain      bool

	out    io.Writer
	newApp func(configPath string) (*app.App, error)
	app    *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "raymonds",
		Short: "RaymondsIndex capital allocation dashboard",
		Long: `Browse RaymondsIndex capital allocation scores.

Run "raymonds serve" for the web dashboard, or query the scoring API
directly with company, ranking, search, stats and compare.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			a, err := c.newApp(c.configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			c.app = a
			return nil
		},
	}

	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("RAYMONDS_CONFIG"), "Path to raymonds.toml")
	root.PersistentFlags().BoolVar(&c.plain, "plain", false, "Disable coloured output")

	root.AddCommand(
		newServeCmd(c),
		newVersionCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newRegisterCmd(c),
		newWhoamiCmd(c),
		newCompanyCmd(c),
		newRankingCmd(c),
		newSearchCmd(c),
		newStatsCmd(c),
		newCompareCmd(c),
	)
	return root
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.out, common.CurrentBuild())
		},
	}
}

// close releases the App whether or not the command succeeded.
func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

func main() {
	c := &cli{out: os.Stdout, newApp: app.NewApp}
	err := newRootCmd(c).Execute()
	c.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
