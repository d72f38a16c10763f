package tui

import (
	"strconv"
	"time"

	"techcrew/internal/models"
)

type column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

func when(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

var bandColumns = []column[models.Band]{
	{"Name", 24, func(b models.Band) string { return b.Name }},
	{"Home", 16, func(b models.Band) string { return b.HomeLocation }},
	{"Members", 8, func(b models.Band) string { return strconv.Itoa(b.Members) }},
	{"Last Played", 12, func(b models.Band) string { return b.LastPlayed.String() }},
	{"Notes", 30, func(b models.Band) string { return b.Notes }},
}

var gigLogColumns = []column[models.GigLog]{
	{"Date", 12, func(g models.GigLog) string { return g.Date.String() }},
	{"Band", 22, func(g models.GigLog) string { return g.BandName() }},
	{"Venue", 20, func(g models.GigLog) string { return g.Venue }},
	{"Notes", 34, func(g models.GigLog) string { return g.Notes }},
}

var scheduleColumns = []column[models.Schedule]{
	{"Date", 12, func(s models.Schedule) string { return s.Date.String() }},
	{"Time", 6, func(s models.Schedule) string { return s.ShowTime }},
	{"Band", 24, func(s models.Schedule) string { return s.DisplayBand() }},
	{"Tech", 20, func(s models.Schedule) string { return s.TechName }},
}

var issueColumns = []column[models.Issue]{
	{"Issue", 26, func(i models.Issue) string { return i.Title }},
	{"Status", 12, func(i models.Issue) string { return string(i.Status) }},
	{"Priority", 8, func(i models.Issue) string { return string(i.Priority) }},
	{"Reporter", 18, func(i models.Issue) string { return i.ReporterName() }},
	{"Closed", 16, func(i models.Issue) string { return when(i.ClosedAt) }},
}

var inventoryColumns = []column[models.InventoryItem]{
	{"Category", 20, func(i models.InventoryItem) string { return i.CategoryName() }},
	{"Model", 26, func(i models.InventoryItem) string { return i.Model }},
	{"Qty", 6, func(i models.InventoryItem) string { return strconv.Itoa(i.Quantity) }},
	{"Notes", 30, func(i models.InventoryItem) string { return i.Notes }},
}
