package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacMoment/coding/internal/data/repos/testutil"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
)

func TestProjectFileUpsertIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	projectRepo := NewProjectRepo(db, testutil.Logger(t))
	fileRepo := NewProjectFileRepo(db, testutil.Logger(t))

	p := &types.Project{UserID: uuid.New(), Name: "demo", Platform: types.Platform("MINECRAFT_PAPER"), Language: "JAVA"}
	require.NoError(t, projectRepo.Create(dbc, p))

	require.NoError(t, fileRepo.Upsert(dbc, p.ID, "README.md", "v1"))
	require.NoError(t, fileRepo.Upsert(dbc, p.ID, "README.md", "v2"))
	require.NoError(t, fileRepo.Upsert(dbc, p.ID, "README.md", "v2"))
	require.NoError(t, fileRepo.Upsert(dbc, p.ID, "build.gradle", "plugins {}"))
	require.NoError(t, fileRepo.CreateDirectory(dbc, p.ID, "src"))

	files, err := fileRepo.ReadAll(dbc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"README.md": "v2", "build.gradle": "plugins {}"}, files)

	listed, err := fileRepo.List(dbc, p.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "README.md", listed[0].Path)
	assert.True(t, listed[2].IsDirectory)
}

func TestProjectGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProjectRepo(db, testutil.Logger(t))

	p, err := repo.GetByID(dbctx.New(context.Background()), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)
}
