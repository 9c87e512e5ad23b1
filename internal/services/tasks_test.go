package services_test

import (
	"strings"
	"time"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/services"

	"github.com/gofrs/uuid"
)

func (s *ServicesTestSuite) TestCreateTask_UnknownCreator() {
	_, err := s.tasks.CreateTask(s.ctx, dto.TaskCreateRequest{
		Title:       "Orphan",
		Description: "No creator",
		Priority:    models.PriorityLow,
		DueDate:     time.Now(),
	}, randomID())
	s.assertKind(err, apperrors.KindNotFound, "Creator not found")

	all, err := s.tasks.GetAllTasks(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServicesTestSuite) TestCreateTask_UnknownAssignee() {
	creator := s.register("creator", models.RoleEditor)
	missing := randomID()

	_, err := s.tasks.CreateTask(s.ctx, dto.TaskCreateRequest{
		Title:       "Assign to ghost",
		Description: "desc",
		Priority:    models.PriorityLow,
		AssigneeID:  &missing,
		DueDate:     time.Now(),
	}, creator.ID)
	s.assertKind(err, apperrors.KindNotFound, "Assignee not found")
}

func (s *ServicesTestSuite) TestCreateTask_AlwaysStartsOpen() {
	creator := s.register("creator", models.RoleViewer)

	task, err := s.tasks.CreateTask(s.ctx, dto.TaskCreateRequest{
		Title:       "Sneaky",
		Description: "Tries to start completed",
		Priority:    models.PriorityHigh,
		Status:      models.StatusCompleted,
		DueDate:     time.Now().Add(time.Hour),
	}, creator.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, task.Status)

	stored, err := s.tasks.GetTaskByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, stored.Status)
	s.Equal(creator.ID, stored.CreatorID)
	s.Nil(stored.AssigneeID)
}

func (s *ServicesTestSuite) TestCreateTask_ValidatesFields() {
	creator := s.register("creator", models.RoleViewer)

	cases := []struct {
		name    string
		req     dto.TaskCreateRequest
		message string
	}{
		{"blank title", dto.TaskCreateRequest{Title: "  ", Description: "d", Priority: models.PriorityLow, DueDate: time.Now()}, "Title is required"},
		{"long title", dto.TaskCreateRequest{Title: strings.Repeat("x", 256), Description: "d", Priority: models.PriorityLow, DueDate: time.Now()}, "Title must be between 1 and 255 characters"},
		{"blank description", dto.TaskCreateRequest{Title: "t", Priority: models.PriorityLow, DueDate: time.Now()}, "Description is required"},
		{"bad priority", dto.TaskCreateRequest{Title: "t", Description: "d", Priority: "URGENT", DueDate: time.Now()}, "Invalid priority: URGENT"},
		{"no due date", dto.TaskCreateRequest{Title: "t", Description: "d", Priority: models.PriorityLow}, "Due date is required"},
	}
	for _, tc := range cases {
		_, err := s.tasks.CreateTask(s.ctx, tc.req, creator.ID)
		s.assertKind(err, apperrors.KindInvalidInput, tc.message)
	}
}

func (s *ServicesTestSuite) TestGetTaskByID_NotFound() {
	_, err := s.tasks.GetTaskByID(s.ctx, randomID())
	s.assertKind(err, apperrors.KindNotFound, "Task not found")
}

func (s *ServicesTestSuite) TestListByAssigneeAndCreator() {
	creator := s.register("creator", models.RoleEditor)
	assignee := s.register("assignee", models.RoleViewer)

	s.newTask(creator, assignee)
	s.newTask(creator, nil)
	s.newTask(assignee, creator)

	byCreator, err := s.tasks.GetTasksByCreator(s.ctx, creator.ID)
	s.Require().NoError(err)
	s.Len(byCreator, 2)

	byAssignee, err := s.tasks.GetTasksByAssignee(s.ctx, assignee.ID)
	s.Require().NoError(err)
	s.Len(byAssignee, 1)
	s.Equal(creator.ID, byAssignee[0].CreatorID)

	none, err := s.tasks.GetTasksByAssignee(s.ctx, randomID())
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *ServicesTestSuite) TestUpdateStatus_CreatorAndAssignee() {
	creator := s.register("creator", models.RoleViewer)
	assignee := s.register("assignee", models.RoleViewer)
	task := s.newTask(creator, assignee)
	time.Sleep(10 * time.Millisecond)

	updated, err := s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusInProgress, s.actor(assignee))
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, updated.Status)
	s.True(updated.UpdatedAt.After(task.UpdatedAt), "status change bumps updated_at")

	previous := updated.UpdatedAt
	time.Sleep(10 * time.Millisecond)
	updated, err = s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusCompleted, s.actor(creator))
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, updated.Status)
	s.True(updated.UpdatedAt.After(previous))

	// No transition graph: a terminal status can be reopened.
	updated, err = s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusOpen, s.actor(creator))
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, updated.Status)
}

func (s *ServicesTestSuite) TestUpdateStatus_ThirdPartyRejectedEvenAsAdmin() {
	creator := s.register("creator", models.RoleViewer)
	assignee := s.register("assignee", models.RoleViewer)
	admin := s.register("admin", models.RoleAdmin)
	task := s.newTask(creator, assignee)

	_, err := s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusCancelled, s.actor(admin))
	s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to update this task")

	stored, err := s.tasks.GetTaskByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, stored.Status)
}

func (s *ServicesTestSuite) TestUpdateStatus_Errors() {
	creator := s.register("creator", models.RoleViewer)
	task := s.newTask(creator, nil)

	_, err := s.tasks.UpdateTaskStatus(s.ctx, randomID(), models.StatusInProgress, s.actor(creator))
	s.assertKind(err, apperrors.KindNotFound, "Task not found")

	_, err = s.tasks.UpdateTaskStatus(s.ctx, task.ID, "ARCHIVED", s.actor(creator))
	s.assertKind(err, apperrors.KindInvalidInput, "Invalid status: ARCHIVED")
}

func (s *ServicesTestSuite) TestUpdateTask_CreatorOnly() {
	creator := s.register("creator", models.RoleViewer)
	assignee := s.register("assignee", models.RoleAdmin)
	task := s.newTask(creator, assignee)

	title := "Renamed"
	_, err := s.tasks.UpdateTask(s.ctx, task.ID, dto.TaskUpdateRequest{Title: &title}, s.actor(assignee))
	s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to update this task")

	description := "New description"
	status := models.StatusInProgress
	priority := models.PriorityHigh
	due := time.Now().Add(240 * time.Hour)
	time.Sleep(10 * time.Millisecond)
	updated, err := s.tasks.UpdateTask(s.ctx, task.ID, dto.TaskUpdateRequest{
		Title:       &title,
		Description: &description,
		Status:      &status,
		Priority:    &priority,
		DueDate:     &due,
	}, s.actor(creator))
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Title)
	s.Equal("New description", updated.Description)
	s.Equal(models.StatusInProgress, updated.Status)
	s.Equal(models.PriorityHigh, updated.Priority)
	s.WithinDuration(due, updated.DueDate, time.Second)
	s.Equal(assignee.ID, *updated.AssigneeID, "assignee untouched when not supplied")
	s.True(updated.UpdatedAt.After(task.UpdatedAt), "edit bumps updated_at")
}

type denyAllPolicy struct{}

func (denyAllPolicy) IsAuthorized(request services.AuthorizationRequest) services.AuthorizationDecision {
	return services.AuthorizationDecision{Action: request.Action, UserID: request.Actor.UserID, Reason: "frozen"}
}

func (s *ServicesTestSuite) TestTaskService_CustomAuthorizationPolicy() {
	creator := s.register("creator", models.RoleAdmin)
	task := s.newTask(creator, nil)

	frozen := services.NewTaskService(s.taskRepo, s.commentRepo, s.userRepo,
		services.WithAuthorizationService(denyAllPolicy{}))

	_, err := frozen.UpdateTaskStatus(s.ctx, task.ID, models.StatusInProgress, s.actor(creator))
	s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to update this task")

	title := "Renamed"
	_, err = frozen.UpdateTask(s.ctx, task.ID, dto.TaskUpdateRequest{Title: &title}, s.actor(creator))
	s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to update this task")

	updated, err := s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusInProgress, s.actor(creator))
	s.Require().NoError(err, "default ownership policy still lets the creator through")
	s.Equal(models.StatusInProgress, updated.Status)
}

func (s *ServicesTestSuite) TestUpdateTask_Reassign() {
	creator := s.register("creator", models.RoleViewer)
	first := s.register("first", models.RoleViewer)
	second := s.register("second", models.RoleViewer)
	task := s.newTask(creator, first)

	updated, err := s.tasks.UpdateTask(s.ctx, task.ID, dto.TaskUpdateRequest{AssigneeID: &second.ID}, s.actor(creator))
	s.Require().NoError(err)
	s.Equal(second.ID, *updated.AssigneeID)

	missing := randomID()
	_, err = s.tasks.UpdateTask(s.ctx, task.ID, dto.TaskUpdateRequest{AssigneeID: &missing}, s.actor(creator))
	s.assertKind(err, apperrors.KindNotFound, "Assignee not found")

	clear := uuid.Nil
	updated, err = s.tasks.UpdateTask(s.ctx, task.ID, dto.TaskUpdateRequest{AssigneeID: &clear}, s.actor(creator))
	s.Require().NoError(err)
	s.Nil(updated.AssigneeID)
}

func (s *ServicesTestSuite) TestDeleteTask_CreatorOnly() {
	creator := s.register("creator", models.RoleViewer)
	assignee := s.register("assignee", models.RoleViewer)
	admin := s.register("admin", models.RoleAdmin)
	task := s.newTask(creator, assignee)

	for _, u := range []*dto.UserDTO{assignee, admin} {
		err := s.tasks.DeleteTask(s.ctx, task.ID, s.actor(u))
		s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to delete this task")
	}

	s.Require().NoError(s.tasks.DeleteTask(s.ctx, task.ID, s.actor(creator)))
	_, err := s.tasks.GetTaskByID(s.ctx, task.ID)
	s.assertKind(err, apperrors.KindNotFound, "Task not found")

	err = s.tasks.DeleteTask(s.ctx, task.ID, s.actor(creator))
	s.assertKind(err, apperrors.KindNotFound, "Task not found")
}

func (s *ServicesTestSuite) TestComments() {
	creator := s.register("creator", models.RoleViewer)
	commenter := s.register("commenter", models.RoleViewer)
	task := s.newTask(creator, nil)

	first, err := s.tasks.AddComment(s.ctx, task.ID, commenter.ID, "Legal reviewed")
	s.Require().NoError(err)
	s.Equal(task.ID, first.TaskID)
	s.Equal(commenter.ID, first.UserID)

	_, err = s.tasks.AddComment(s.ctx, task.ID, creator.ID, "Thanks")
	s.Require().NoError(err)

	comments, err := s.tasks.GetTaskComments(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(comments, 2)
	s.Equal("Legal reviewed", comments[0].Content)
	s.Equal("Thanks", comments[1].Content)

	_, err = s.tasks.AddComment(s.ctx, randomID(), commenter.ID, "x")
	s.assertKind(err, apperrors.KindNotFound, "Task not found")

	_, err = s.tasks.AddComment(s.ctx, task.ID, randomID(), "x")
	s.assertKind(err, apperrors.KindNotFound, "Author not found")

	_, err = s.tasks.AddComment(s.ctx, task.ID, commenter.ID, "   ")
	s.assertKind(err, apperrors.KindInvalidInput, "")

	_, err = s.tasks.GetTaskComments(s.ctx, randomID())
	s.assertKind(err, apperrors.KindNotFound, "Task not found")
}

func (s *ServicesTestSuite) TestSearchTasks() {
	creator := s.register("creator", models.RoleViewer)
	task := s.newTask(creator, nil)
	_, err := s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusInProgress, s.actor(creator))
	s.Require().NoError(err)
	s.newTask(creator, nil)

	found, err := s.tasks.SearchTasks(s.ctx, "crm", "ALL", "")
	s.Require().NoError(err)
	s.Len(found, 2)

	found, err = s.tasks.SearchTasks(s.ctx, "", "in_progress", "medium")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(task.ID, found[0].ID)

	_, err = s.tasks.SearchTasks(s.ctx, "", "DONE", "")
	s.assertKind(err, apperrors.KindInvalidInput, "Invalid status: DONE")

	_, err = s.tasks.SearchTasks(s.ctx, "", "", "CRITICAL")
	s.assertKind(err, apperrors.KindInvalidInput, "Invalid priority: CRITICAL")
}

// Full lifecycle across three users: assignment, status change by the
// assignee, rejection of an outsider and deletion by the creator.
func (s *ServicesTestSuite) TestTaskLifecycleScenario() {
	u1 := s.register("u1", models.RoleAdmin)
	u2 := s.register("u2", models.RoleViewer)
	u3 := s.register("u3", models.RoleViewer)

	task := s.newTask(u1, u2)
	_, err := s.tasks.AddComment(s.ctx, task.ID, u2.ID, "On it")
	s.Require().NoError(err)

	updated, err := s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusInProgress, s.actor(u2))
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, updated.Status)

	_, err = s.tasks.UpdateTaskStatus(s.ctx, task.ID, models.StatusCompleted, s.actor(u3))
	s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to update this task")

	s.Require().NoError(s.tasks.DeleteTask(s.ctx, task.ID, s.actor(u1)))

	_, err = s.tasks.GetTaskByID(s.ctx, task.ID)
	s.assertKind(err, apperrors.KindNotFound, "Task not found")

	comments, err := s.commentRepo.FindByTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Empty(comments)
}
