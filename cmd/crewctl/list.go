package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"techcrew/internal/models"
	"techcrew/internal/tui"
)

var (
	listStatus []string
	listBand   string
	listFrom   string
	listTo     string
	listLimit  int
	listMine   bool
)

var listCmd = &cobra.Command{
	Use:       "list <entity>",
	Short:     "Print records as a table",
	Long:      "Prints one entity through the API. Entities: " + strings.Join(tui.Entities, ", ") + ".",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: tui.Entities,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, log, err := newClient(false)
		if err != nil {
			return err
		}
		defer log.Close()

		v := url.Values{}
		if len(listStatus) > 0 {
			v.Set("status", strings.Join(listStatus, ","))
		}
		v.Set("band_id", listBand)
		v.Set("from", listFrom)
		v.Set("to", listTo)
		if listLimit > 0 {
			v.Set("limit", strconv.Itoa(listLimit))
		}
		q, err := models.ParseListQuery(v)
		if err != nil {
			return err
		}
		if listMine {
			me, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			q.OwnerID = me.ID
		}

		out, n, err := tui.FetchTable(cmd.Context(), c, args[0], q)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		color.New(color.Faint).Fprintf(cmd.ErrOrStderr(), "%d %s\n", n, args[0])
		return nil
	},
}

func init() {
	f := listCmd.Flags()
	f.StringSliceVar(&listStatus, "status", nil, "issue status filter (open, in_progress, closed)")
	f.StringVar(&listBand, "band", "", "only records linked to this band id")
	f.StringVar(&listFrom, "from", "", "earliest date, YYYY-MM-DD")
	f.StringVar(&listTo, "to", "", "latest date, YYYY-MM-DD")
	f.IntVar(&listLimit, "limit", 0, "maximum rows (0 for all)")
	f.BoolVar(&listMine, "mine", false, "only records you own")
}
