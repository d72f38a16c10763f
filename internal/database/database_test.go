package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/config"
	"techcrew/internal/database"
	"techcrew/internal/database/dbtest"
	"techcrew/internal/logger"
	"techcrew/internal/models"
)

func TestCreateSchemaSeedsCategoriesOnce(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	require.NoError(t, database.CreateSchema(ctx, db))

	n, err := db.NewSelect().Model((*models.InventoryCategory)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultCategories), n)
}

func TestSeedSample(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	require.NoError(t, database.SeedSample(ctx, db))

	var band models.Band
	require.NoError(t, db.NewSelect().Model(&band).Where("name = ?", "The Rockers").Scan(ctx))
	assert.Equal(t, "NYC", band.HomeLocation)
	assert.Equal(t, 4, band.Members)
	assert.Equal(t, models.Date("2023-06-15"), band.LastPlayed)

	var sched models.Schedule
	require.NoError(t, db.NewSelect().Model(&sched).Where("?TableAlias.id = ?", "sched-1").Relation("Band").Scan(ctx))
	assert.Equal(t, "The Rockers", sched.DisplayBand())
}

func TestDropSchema(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	require.NoError(t, database.DropSchema(ctx, db))
	_, err := db.NewSelect().Model((*models.Band)(nil)).Count(ctx)
	assert.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "oracle"}, logger.Discard())
	assert.ErrorContains(t, err, "unknown database driver")
}
