package database

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"techcrew/internal/models"
)

// SeedSample loads a small demo data set. It expects an empty schema with
// the default categories present.
func SeedSample(ctx context.Context, db bun.IDB) error {
	now := time.Now().UTC()
	today := models.DateOf(now)
	daysFromNow := func(n int) models.Date { return models.DateOf(now.AddDate(0, 0, n)) }

	var cats []models.InventoryCategory
	if err := db.NewSelect().Model(&cats).Order("name ASC").Scan(ctx); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	catID := map[string]string{}
	for _, c := range cats {
		catID[c.Name] = c.ID
	}

	users := []models.User{
		{ID: "user-alice", Email: "alice@example.com", FullName: "Alice Mixer", Role: models.RoleTech, CreatedAt: now, UpdatedAt: now},
		{ID: "user-bob", Email: "bob@example.com", FullName: "Bob Monitor", Role: models.RoleTech, CreatedAt: now, UpdatedAt: now},
	}
	bands := []models.Band{
		{ID: "band-rockers", Name: "The Rockers", HomeLocation: "NYC", Members: 4, LastPlayed: "2023-06-15", CreatedBy: "user-alice", CreatedAt: now, UpdatedAt: now},
		{ID: "band-quiet", Name: "Quiet Storm", HomeLocation: "Austin", Members: 3, Notes: "Bring the DI boxes", CreatedBy: "user-bob", CreatedAt: now, UpdatedAt: now},
	}
	gigs := []models.GigLog{
		{ID: "gig-1", Date: daysFromNow(-7), BandID: "band-rockers", Venue: "Main Hall", Notes: "Feedback on mon 3", TechID: "user-alice", CreatedAt: now, UpdatedAt: now},
		{ID: "gig-2", Date: daysFromNow(-2), BandID: "band-quiet", Venue: "Back Room", TechID: "user-bob", CreatedAt: now, UpdatedAt: now},
	}
	schedules := []models.Schedule{
		{ID: "sched-1", Date: today, ShowTime: "20:00", BandID: "band-rockers", TechID: "user-alice", TechName: "Alice Mixer", CreatedAt: now, UpdatedAt: now},
		{ID: "sched-2", Date: daysFromNow(3), ShowTime: "21:30", BandName: "Open Mic Night", TechID: "user-bob", CreatedAt: now, UpdatedAt: now},
	}
	issues := []models.Issue{
		{ID: "issue-1", Title: "Hum on channel 7", Description: "Ground loop on the keys DI", Status: models.StatusOpen, Priority: models.PriorityHigh, ReportedBy: "user-alice", CreatedAt: now, UpdatedAt: now},
		{ID: "issue-2", Title: "Replace XLR", Description: "Intermittent 25ft cable", Status: models.StatusInProgress, Priority: models.PriorityLow, ReportedBy: "user-bob", CreatedAt: now, UpdatedAt: now},
	}
	items := []models.InventoryItem{
		{ID: "item-1", CategoryID: catID["Vocal Mics"], Model: "Shure SM58", Quantity: 8, CreatedBy: "user-alice", CreatedAt: now, UpdatedAt: now},
		{ID: "item-2", CategoryID: catID["Cables"], Model: "XLR 25ft", Quantity: 30, CreatedBy: "user-bob", CreatedAt: now, UpdatedAt: now},
	}

	for _, rows := range []any{&users, &bands, &gigs, &schedules, &issues, &items} {
		if _, err := db.NewInsert().Model(rows).Exec(ctx); err != nil {
			return fmt.Errorf("seed %T: %w", rows, err)
		}
	}
	return nil
}
