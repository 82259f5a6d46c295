package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"github.com/taskmanager/taskmanager-api/internal/testutil"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func createProject(t *testing.T, db *gorm.DB, creatorID uint64, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:         name,
		Description:  "desc",
		Client:       "ACME",
		DeliveryDate: time.Now().Add(72 * time.Hour),
		CreatorID:    creatorID,
	}
	require.NoError(t, repository.NewProjectRepository(db).Create(project))
	return project
}

func TestUserRepository_FindByToken(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "supersecret")
	user.Token = "abc123"
	require.NoError(t, repo.Update(user))

	found, err := repo.FindByToken("abc123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByToken("")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_EmailExists(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	exists, err := repo.EmailExists("ana@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "supersecret")
	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	_, err = repo.FindByEmail("ana@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err = repo.EmailExists("ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists, "deleted users keep their email reserved")
}

func TestUserRepository_FindByEmail_DatabaseFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByEmail("ana@example.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListForUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProjectRepository(db)

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com", "supersecret")
	collaborator := testutil.CreateUser(t, db, "Collab", "collab@example.com", "supersecret")
	stranger := testutil.CreateUser(t, db, "Stranger", "stranger@example.com", "supersecret")

	own := createProject(t, db, owner.ID, "Own")
	shared := createProject(t, db, stranger.ID, "Shared")
	createProject(t, db, stranger.ID, "Private")

	require.NoError(t, repo.AddCollaborator(shared, owner))

	projects, err := repo.ListForUser(owner.ID)
	require.NoError(t, err)

	ids := []uint64{}
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uint64{own.ID, shared.ID}, ids)

	projects, err = repo.ListForUser(collaborator.ID)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectRepository_CollaboratorsAreASet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProjectRepository(db)

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com", "supersecret")
	collaborator := testutil.CreateUser(t, db, "Collab", "collab@example.com", "supersecret")
	project := createProject(t, db, owner.ID, "Website")

	require.NoError(t, repo.AddCollaborator(project, collaborator))
	require.NoError(t, repo.AddCollaborator(project, collaborator))

	var count int64
	require.NoError(t, db.Table("project_collaborators").Where("project_id = ?", project.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.RemoveCollaborator(project, collaborator.ID))
	require.NoError(t, repo.RemoveCollaborator(project, collaborator.ID))

	require.NoError(t, db.Table("project_collaborators").Where("project_id = ?", project.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestProjectRepository_FindDetailOrdersTasks(t *testing.T) {
	db := testutil.NewDB(t)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com", "supersecret")
	project := createProject(t, db, owner.ID, "Website")

	first := &models.Task{Name: "first", Description: "d", Priority: models.PriorityLow, ProjectID: project.ID, DeliveryDate: time.Now()}
	second := &models.Task{Name: "second", Description: "d", Priority: models.PriorityHigh, ProjectID: project.ID, DeliveryDate: time.Now(), CompletedByID: &owner.ID, Status: true}
	require.NoError(t, tasks.Create(first))
	require.NoError(t, tasks.Create(second))

	detail, err := projects.FindDetail(project.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tasks, 2)
	assert.Equal(t, "first", detail.Tasks[0].Name)
	assert.Equal(t, "second", detail.Tasks[1].Name)
	require.NotNil(t, detail.Tasks[1].CompletedBy)
	assert.Equal(t, "Owner", detail.Tasks[1].CompletedBy.Name)
	assert.Equal(t, owner.ID, detail.Creator.ID)

	require.NoError(t, tasks.Delete(first.ID))

	detail, err = projects.FindDetail(project.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, second.ID, detail.Tasks[0].ID)
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com", "supersecret")
	collaborator := testutil.CreateUser(t, db, "Collab", "collab@example.com", "supersecret")
	project := createProject(t, db, owner.ID, "Website")
	require.NoError(t, projects.AddCollaborator(project, collaborator))

	task := &models.Task{Name: "t", Description: "d", Priority: models.PriorityMedium, ProjectID: project.ID, DeliveryDate: time.Now()}
	require.NoError(t, tasks.Create(task))

	require.NoError(t, projects.Delete(project.ID))

	_, err := projects.FindByID(project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = tasks.FindByID(task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var links int64
	require.NoError(t, db.Table("project_collaborators").Where("project_id = ?", project.ID).Count(&links).Error)
	assert.Zero(t, links)
}

func TestProjectRepository_DeleteRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET "deleted_at"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Delete(42)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
