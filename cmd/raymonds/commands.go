package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/query"
	"github.com/bobmcallan/raymonds/internal/stores/compare"
	"github.com/bobmcallan/raymonds/internal/view"
)

// resultErr turns a failed hook result into a command error.
func resultErr[T any](what string, res query.Result[T]) error {
	if res.Err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s", what, raymonds.UserMessage(res.Err))
}

func passwordFlag(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("RAYMONDS_PASSWORD")
}

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := models.Credentials{Email: email, Password: passwordFlag(password)}
			if err := c.app.Auth.Login(cmd.Context(), creds); err != nil {
				return errors.New(raymonds.UserMessage(err))
			}
			fmt.Fprintf(c.out, "Logged in as %s\n", c.app.Auth.State().User.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or RAYMONDS_PASSWORD)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			c.app.Auth.Logout(cmd.Context())
			fmt.Fprintln(c.out, "Logged out")
		},
	}
}

func newRegisterCmd(c *cli) *cobra.Command {
	var req models.RegisterRequest
	var password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Password = passwordFlag(password)
			user, err := c.app.Auth.Register(cmd.Context(), req)
			if err != nil {
				return errors.New(raymonds.UserMessage(err))
			}
			fmt.Fprintf(c.out, "Registered %s. Run \"raymonds login\" to sign in.\n", user.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name (optional)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or RAYMONDS_PASSWORD)")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Auth.CheckAuth(cmd.Context()); err != nil {
				return errors.New(raymonds.UserMessage(err))
			}
			st := c.app.Auth.State()
			if !st.IsAuthenticated {
				fmt.Fprintln(c.out, "Not logged in")
				return nil
			}
			fmt.Fprintf(c.out, "%s <%s>\n", st.User.DisplayName(), st.User.Email)
			return nil
		},
	}
}

func newCompanyCmd(c *cli) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "company <id>",
		Short: "Show a company's score, flags, analysis and stock performance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := c.app.Pages.Company(cmd.Context(), args[0], period)
			if err := resultErr("company "+page.ID, page.Company.Result); err != nil {
				return err
			}
			fmt.Fprint(c.out, view.CompanyMarkdown(page.Company.Data(), page.Stock.Data(), c.painter()))
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", models.DefaultStockPeriod, "Price history period: "+strings.Join(models.StockPeriods, ", "))
	return cmd
}

func newRankingCmd(c *cli) *cobra.Command {
	var params models.RankingParams
	var grade string
	var minScore, maxScore float64
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "List companies by RaymondsIndex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Grade = models.Grade(grade)
			if cmd.Flags().Changed("min-score") {
				params.MinScore = &minScore
			}
			if cmd.Flags().Changed("max-score") {
				params.MaxScore = &maxScore
			}
			res := c.app.Hooks.Ranking(cmd.Context(), params.Normalized())
			if err := resultErr("ranking", res); err != nil {
				return err
			}
			fmt.Fprint(c.out, view.RankingMarkdown(res.Data, c.painter()))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&params.Page, "page", 1, "Page number")
	f.IntVar(&params.PageSize, "size", 20, "Page size (max 100)")
	f.StringVar(&grade, "grade", "", "Only this grade, e.g. A+")
	f.StringVar(&params.Sector, "sector", "", "Only this sector")
	f.StringVar(&params.SortBy, "sort", "raymonds_index", "Sort field")
	f.StringVar(&params.Order, "order", "desc", "Sort order: asc or desc")
	f.Float64Var(&minScore, "min-score", 0, "Minimum RaymondsIndex")
	f.Float64Var(&maxScore, "max-score", 0, "Maximum RaymondsIndex")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find companies by name or ticker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			res := c.app.Hooks.Search(cmd.Context(), q, limit)
			if err := resultErr("search", res); err != nil {
				return err
			}
			fmt.Fprint(c.out, view.SearchMarkdown(res.Data, c.painter()))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show universe-wide statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Hooks.Statistics(cmd.Context())
			if err := resultErr("statistics", res); err != nil {
				return err
			}
			fmt.Fprint(c.out, view.StatisticsMarkdown(res.Data, c.painter()))
			return nil
		},
	}
}

func newCompareCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id> <id> [id...]",
		Short: "Compare companies side by side",
		Args:  cobra.MinimumNArgs(compare.MinForModal),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rejected []string
			for _, id := range args {
				res := c.app.Hooks.Company(cmd.Context(), id)
				if err := resultErr("company "+id, res); err != nil {
					return err
				}
				if res.Data == nil {
					return fmt.Errorf("company %s: not found", id)
				}
				if err := c.app.Compare.Add(*res.Data); err != nil {
					if errors.Is(err, compare.ErrSelectionFull) {
						rejected = append(rejected, id)
						continue
					}
					return err
				}
			}
			fmt.Fprint(c.out, view.ComparisonMarkdown(c.app.Compare.Items(), c.painter()))
			if len(rejected) > 0 {
				fmt.Fprintf(c.out, "\nSkipped %s: at most %d companies can be compared.\n", strings.Join(rejected, ", "), c.app.Compare.Max())
			}
			return nil
		},
	}
}
