package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"github.com/taskmanager/taskmanager-api/internal/services"
	"github.com/taskmanager/taskmanager-api/internal/testutil"
	"gorm.io/gorm"
)

type stubSuggester struct {
	tasks       []services.SuggestedTask
	err         error
	projectName string
}

func (s *stubSuggester) SuggestTasks(_ context.Context, projectName, _ string) ([]services.SuggestedTask, error) {
	s.projectName = projectName
	return s.tasks, s.err
}

type TaskServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	projects  *services.ProjectService
	tasks     *services.TaskService
	suggester *stubSuggester

	owner    *models.User
	member   *models.User
	stranger *models.User
	project  *models.Project
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.suggester = &stubSuggester{}

	projectRepo := repository.NewProjectRepository(s.db)
	s.projects = services.NewProjectService(projectRepo, repository.NewUserRepository(s.db))
	s.tasks = services.NewTaskService(repository.NewTaskRepository(s.db), projectRepo, s.suggester)

	s.owner = testutil.CreateUser(s.T(), s.db, "Owner", "owner@example.com", "supersecret")
	s.member = testutil.CreateUser(s.T(), s.db, "Member", "member@example.com", "supersecret")
	s.stranger = testutil.CreateUser(s.T(), s.db, "Stranger", "stranger@example.com", "supersecret")

	var err error
	s.project, err = s.projects.CreateProject(services.CreateProjectInput{
		Name: "Website", Description: "Corporate site", Client: "ACME", CreatorID: s.owner.ID,
	})
	s.Require().NoError(err)

	_, err = s.projects.AddCollaborator(s.project.ID, s.owner.ID, "member@example.com")
	s.Require().NoError(err)
}

func (s *TaskServiceTestSuite) createTask(name string) *models.Task {
	task, err := s.tasks.CreateTask(services.CreateTaskInput{
		Name:        name,
		Description: "Draft the layout",
		Priority:    "Alta",
		ProjectID:   s.project.ID,
		ActorID:     s.owner.ID,
	})
	s.Require().NoError(err)
	return task
}

func (s *TaskServiceTestSuite) TestCreateTask_Success() {
	due := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	task, err := s.tasks.CreateTask(services.CreateTaskInput{
		Name:         "Design mockup",
		Description:  "Draft the layout",
		Priority:     "Alta",
		DeliveryDate: &due,
		ProjectID:    s.project.ID,
		ActorID:      s.owner.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.PriorityHigh, task.Priority)
	s.False(task.Status)
	s.Nil(task.CompletedByID)
	s.Equal(s.project.ID, task.Project.ID)

	detail, err := s.projects.GetProject(s.project.ID, s.owner.ID)
	s.Require().NoError(err)
	s.Require().Len(detail.Tasks, 1)
	s.Equal(task.ID, detail.Tasks[0].ID)
	s.WithinDuration(due, detail.Tasks[0].DeliveryDate, time.Second)
}

func (s *TaskServiceTestSuite) TestCreateTask_Rejections() {
	_, err := s.tasks.CreateTask(services.CreateTaskInput{Name: "x", Description: "d", Priority: "Low", ActorID: s.owner.ID})
	s.ErrorIs(err, services.ErrProjectIDRequired)

	_, err = s.tasks.CreateTask(services.CreateTaskInput{Name: "x", Description: "d", Priority: "Low", ProjectID: s.project.ID + 100, ActorID: s.owner.ID})
	s.ErrorIs(err, services.ErrProjectNotFound)

	_, err = s.tasks.CreateTask(services.CreateTaskInput{Name: "x", Description: "d", Priority: "Low", ProjectID: s.project.ID, ActorID: s.member.ID})
	s.ErrorIs(err, services.ErrNotProjectCreator)

	_, err = s.tasks.CreateTask(services.CreateTaskInput{Name: " ", Description: "d", Priority: "Low", ProjectID: s.project.ID, ActorID: s.owner.ID})
	s.ErrorIs(err, services.ErrTaskFieldsRequired)

	_, err = s.tasks.CreateTask(services.CreateTaskInput{Name: "x", Description: "d", Priority: "urgent", ProjectID: s.project.ID, ActorID: s.owner.ID})
	s.ErrorIs(err, services.ErrInvalidPriority)
}

func (s *TaskServiceTestSuite) TestGetTask_Access() {
	task := s.createTask("Design mockup")

	got, err := s.tasks.GetTask(task.ID, s.member.ID)
	s.Require().NoError(err)
	s.Equal("Website", got.Project.Name)

	_, err = s.tasks.GetTask(task.ID, s.stranger.ID)
	s.ErrorIs(err, services.ErrProjectAccessDenied)

	_, err = s.tasks.GetTask(task.ID+100, s.owner.ID)
	s.ErrorIs(err, services.ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestUpdateTask_PartialAndCreatorOnly() {
	task := s.createTask("Design mockup")

	name := "Design mockups"
	_, err := s.tasks.UpdateTask(task.ID, s.member.ID, services.UpdateTaskInput{Name: &name})
	s.ErrorIs(err, services.ErrNotProjectCreator)

	invalid := "urgent"
	_, err = s.tasks.UpdateTask(task.ID, s.owner.ID, services.UpdateTaskInput{Priority: &invalid})
	s.ErrorIs(err, services.ErrInvalidPriority)

	low := "baja"
	updated, err := s.tasks.UpdateTask(task.ID, s.owner.ID, services.UpdateTaskInput{Name: &name, Priority: &low})
	s.Require().NoError(err)
	s.Equal("Design mockups", updated.Name)
	s.Equal("Draft the layout", updated.Description)
	s.Equal(models.PriorityLow, updated.Priority)
	s.Equal(s.project.ID, updated.ProjectID)
}

func (s *TaskServiceTestSuite) TestDeleteTask() {
	task := s.createTask("Design mockup")

	s.ErrorIs(s.tasks.DeleteTask(task.ID, s.member.ID), services.ErrNotProjectCreator)
	s.Require().NoError(s.tasks.DeleteTask(task.ID, s.owner.ID))
	s.ErrorIs(s.tasks.DeleteTask(task.ID, s.owner.ID), services.ErrTaskNotFound)

	detail, err := s.projects.GetProject(s.project.ID, s.owner.ID)
	s.Require().NoError(err)
	s.Empty(detail.Tasks)
}

func (s *TaskServiceTestSuite) TestToggleTaskStatus() {
	task := s.createTask("Design mockup")

	_, err := s.tasks.ToggleTaskStatus(task.ID, s.stranger.ID)
	s.ErrorIs(err, services.ErrProjectAccessDenied)

	toggled, err := s.tasks.ToggleTaskStatus(task.ID, s.member.ID)
	s.Require().NoError(err)
	s.True(toggled.Status)
	s.Require().NotNil(toggled.CompletedBy)
	s.Equal(s.member.ID, toggled.CompletedBy.ID)
	s.Equal("Website", toggled.Project.Name)

	reopened, err := s.tasks.ToggleTaskStatus(task.ID, s.owner.ID)
	s.Require().NoError(err)
	s.False(reopened.Status)
	s.Nil(reopened.CompletedByID)
	s.Nil(reopened.CompletedBy)
}

func (s *TaskServiceTestSuite) TestSuggestTasks() {
	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	s.suggester.tasks = []services.SuggestedTask{
		{Name: " Write copy ", Description: "Landing page", Priority: "alta", DeliveryDate: &future},
		{Name: "", Description: "dropped"},
		{Name: "Review", Priority: "whenever", DeliveryDate: &past},
	}

	suggestions, err := s.tasks.SuggestTasks(context.Background(), services.SuggestTasksInput{
		ProjectID: s.project.ID, ActorID: s.owner.ID, Text: "write copy and review it",
	})
	s.Require().NoError(err)
	s.Require().Len(suggestions, 2)
	s.Equal("Website", s.suggester.projectName)
	s.Equal("Write copy", suggestions[0].Name)
	s.Equal(models.PriorityHigh, suggestions[0].Priority)
	s.NotNil(suggestions[0].DeliveryDate)
	s.Equal(models.PriorityMedium, suggestions[1].Priority)
	s.Nil(suggestions[1].DeliveryDate)

	_, err = s.tasks.SuggestTasks(context.Background(), services.SuggestTasksInput{
		ProjectID: s.project.ID, ActorID: s.member.ID, Text: "anything",
	})
	s.ErrorIs(err, services.ErrNotProjectCreator)
}

func (s *TaskServiceTestSuite) TestSuggestTasks_Failures() {
	input := services.SuggestTasksInput{ProjectID: s.project.ID, ActorID: s.owner.ID, Text: "plan"}

	s.suggester.err = errors.New("rate limited")
	_, err := s.tasks.SuggestTasks(context.Background(), input)
	s.Error(err)

	s.suggester.err = nil
	_, err = s.tasks.SuggestTasks(context.Background(), input)
	s.ErrorIs(err, services.ErrAINoTasksGenerated)

	s.suggester.tasks = []services.SuggestedTask{{Name: " "}}
	_, err = s.tasks.SuggestTasks(context.Background(), input)
	s.ErrorIs(err, services.ErrAINoValidTasks)

	s.suggester.tasks = make([]services.SuggestedTask, constants.MaxAIGeneratedTasks+1)
	_, err = s.tasks.SuggestTasks(context.Background(), input)
	s.Error(err)

	_, err = s.tasks.SuggestTasks(context.Background(), services.SuggestTasksInput{ProjectID: s.project.ID, ActorID: s.owner.ID})
	s.ErrorIs(err, services.ErrSuggestTextRequired)

	unconfigured := services.NewTaskService(repository.NewTaskRepository(s.db), repository.NewProjectRepository(s.db), nil)
	_, err = unconfigured.SuggestTasks(context.Background(), input)
	s.ErrorIs(err, services.ErrAIServiceNotConfigured)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
