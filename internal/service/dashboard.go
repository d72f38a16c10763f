package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"techcrew/internal/models"
	"techcrew/internal/repo"
)

const (
	dashboardIssues    = 5
	dashboardGigLogs   = 6
	dashboardSchedules = 6
)

type Dashboard struct {
	deps      Deps
	issues    *Issues
	gigLogs   *GigLogs
	schedules *Schedules
	inventory *Inventory
}

func NewDashboard(deps Deps, issues *Issues, gigLogs *GigLogs, schedules *Schedules, inventory *Inventory) *Dashboard {
	return &Dashboard{deps: deps, issues: issues, gigLogs: gigLogs, schedules: schedules, inventory: inventory}
}

// Load gathers the dashboard sections concurrently.
func (d *Dashboard) Load(ctx context.Context) (*repo.Dashboard, error) {
	var out repo.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		out.RecentIssues, err = d.issues.Recent(ctx, dashboardIssues)
		return err
	})
	g.Go(func() error {
		var err error
		out.RecentGigLogs, err = d.gigLogs.List(ctx, models.ListQuery{Limit: dashboardGigLogs})
		return err
	})
	g.Go(func() error {
		var err error
		out.UpcomingSchedules, err = d.schedules.List(ctx, models.ListQuery{
			From:  models.DateOf(d.deps.now()),
			Limit: dashboardSchedules,
		})
		return err
	})
	g.Go(func() error {
		var err error
		out.Inventory, err = d.inventory.Overview(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
