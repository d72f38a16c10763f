package main

import (
	"github.com/spf13/cobra"

	"techcrew/internal/session"
	"techcrew/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive tracker",
	Long: `Opens the full-screen tracker with a tab per entity.

Keys: a add, e edit, d delete, enter details, t toggle issue status,
r reload, tab/shift+tab switch tabs, q quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, log, err := newClient(true)
		if err != nil {
			return err
		}
		defer log.Close()

		me, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}
		s := session.Session{UserID: me.ID, Email: me.Email, FullName: me.FullName, Role: me.Role}
		log.Info("TUI", "Starting for "+s.DisplayName())
		return tui.Run(cmd.Context(), c, s, log)
	},
}
