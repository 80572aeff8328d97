package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
)

func TestCreateTask_ScenarioLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	caps := authz.Manager(admin.ID)
	b := env.createBeneficiary(t, "Awa", "Diallo")

	input := TaskInput{
		Title:          "Collect birth certificate",
		ObjectTypeCode: "demande_document",
		Status:         "ToDo",
		StartDate:      "2024-09-01",
		TargetType:     "beneficiary",
		TargetID:       uint64Ptr(b.ID),
	}
	task, err := env.tasks.CreateTask(ctx, caps, input)
	require.NoError(t, err)
	assert.Nil(t, task.EndDate)
	assert.Equal(t, "demande_document", task.ObjectType.Code)
	assert.Equal(t, models.BeneficiaryTarget{ID: b.ID}, task.Target())
	require.NotNil(t, task.CreatedByID)
	assert.Equal(t, admin.ID, *task.CreatedByID)

	input.Status = "Done"
	input.EndDate = "2024-09-10"
	task, err = env.tasks.UpdateTask(ctx, caps, task.ID, input)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, task.Status)
	require.NotNil(t, task.EndDate)
	assert.Equal(t, "2024-09-10", task.EndDate.Format(DateLayout))

	input.Status = "ToDo"
	input.EndDate = ""
	task, err = env.tasks.UpdateTask(ctx, caps, task.ID, input)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusToDo, task.Status)
	assert.Nil(t, task.EndDate)
}

func TestCreateTask_NonDoneClearsSuppliedEndDate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")

	input := backOfficeInput("Prepare scholarships")
	input.Status = "InProgress"
	input.EndDate = "2024-09-05"

	task, err := env.tasks.CreateTask(context.Background(), authz.Manager(admin.ID), input)
	require.NoError(t, err)
	assert.Nil(t, task.EndDate)

	var stored models.Task
	require.NoError(t, env.db.First(&stored, task.ID).Error)
	assert.Nil(t, stored.EndDate)
}

func TestCreateTask_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	caps := authz.Manager(admin.ID)

	cases := []struct {
		name  string
		field string
		edit  func(*TaskInput)
	}{
		{"done without end date", "end_date", func(in *TaskInput) { in.Status = "Done" }},
		{"end before start", "end_date", func(in *TaskInput) { in.Status = "Done"; in.EndDate = "2024-08-31" }},
		{"missing start date", "start_date", func(in *TaskInput) { in.StartDate = "" }},
		{"unparseable start date", "start_date", func(in *TaskInput) { in.StartDate = "01/09/2024" }},
		{"unknown status", "status", func(in *TaskInput) { in.Status = "Archived" }},
		{"unknown object type", "object_type", func(in *TaskInput) { in.ObjectTypeCode = "nope" }},
		{"blank title", "title", func(in *TaskInput) { in.Title = "   " }},
		{"missing target type", "target_type", func(in *TaskInput) { in.TargetType = "" }},
		{"unknown target type", "target_type", func(in *TaskInput) { in.TargetType = "school" }},
		{"missing target id", "target_id", func(in *TaskInput) { in.TargetType = "sponsor" }},
		{"missing beneficiary", "target_id", func(in *TaskInput) {
			in.TargetType = "beneficiary"
			in.TargetID = uint64Ptr(999999)
		}},
		{"unknown assignee", "assignee_ids", func(in *TaskInput) { in.AssigneeIDs = []uint64{4242} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := backOfficeInput("Task")
			tc.edit(&input)

			_, err := env.tasks.CreateTask(context.Background(), caps, input)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	assert.Zero(t, count, "failed validation must not write")
}

func TestCreateTask_TargetIDIgnoredForNonRecordTargets(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")

	input := backOfficeInput("Call the association")
	input.TargetType = "organization"
	input.TargetID = uint64Ptr(77)

	task, err := env.tasks.CreateTask(context.Background(), authz.Manager(admin.ID), input)
	require.NoError(t, err)
	assert.Equal(t, models.TargetTypeOrganization, task.TargetType)
	assert.Nil(t, task.TargetID)
}

func TestCreateTask_RequiresManage(t *testing.T) {
	env := newTestEnv(t)
	member := env.createUser(t, "member@fae.org", "Member")

	_, err := env.tasks.CreateTask(context.Background(), authz.Member(member.ID), backOfficeInput("Task"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.tasks.CreateTask(context.Background(), authz.Capabilities{}, backOfficeInput("Task"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateTask_AssigneesDeduplicated(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	a := env.createUser(t, "a@fae.org", "Alice")
	b := env.createUser(t, "b@fae.org", "Bruno")

	input := backOfficeInput("Task")
	input.AssigneeIDs = []uint64{a.ID, b.ID, a.ID}

	task, err := env.tasks.CreateTask(context.Background(), authz.Manager(admin.ID), input)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{a.ID, b.ID}, task.AssigneeIDs())
}

func TestUpdateTask_NotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")

	_, err := env.tasks.UpdateTask(context.Background(), authz.Manager(admin.ID), 12345, backOfficeInput("Task"))
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTask_ForbiddenForAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	member := env.createUser(t, "member@fae.org", "Member")

	input := backOfficeInput("Task")
	input.AssigneeIDs = []uint64{member.ID}
	task, err := env.tasks.CreateTask(ctx, authz.Manager(admin.ID), input)
	require.NoError(t, err)

	input.Title = "Hijacked"
	_, err = env.tasks.UpdateTask(ctx, authz.Member(member.ID), task.ID, input)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.tasks.AssignTask(ctx, authz.Member(member.ID), task.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateTask_IdempotentFullState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	caps := authz.Manager(admin.ID)
	a := env.createUser(t, "a@fae.org", "Alice")
	s := env.createSponsor(t, "Jean", "Martin")

	input := TaskInput{
		Title:          "Relance",
		Description:    "Second reminder",
		ObjectTypeCode: "relance_dons",
		Status:         "Done",
		StartDate:      "2024-03-01",
		EndDate:        "2024-03-04",
		TargetType:     "sponsor",
		TargetID:       uint64Ptr(s.ID),
		AssigneeIDs:    []uint64{a.ID},
	}
	first, err := env.tasks.CreateTask(ctx, caps, input)
	require.NoError(t, err)

	second, err := env.tasks.UpdateTask(ctx, caps, first.ID, input)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Description, second.Description)
	assert.Equal(t, first.ObjectTypeID, second.ObjectTypeID)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.StartDate.Equal(second.StartDate))
	assert.True(t, first.EndDate.Equal(*second.EndDate))
	assert.Equal(t, first.Target(), second.Target())
	assert.Equal(t, first.CreatedByID, second.CreatedByID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, first.AssigneeIDs(), second.AssigneeIDs())
}

func TestGetTask_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	assignee := env.createUser(t, "a@fae.org", "Alice")
	outsider := env.createUser(t, "o@fae.org", "Oscar")

	input := backOfficeInput("Task")
	input.AssigneeIDs = []uint64{assignee.ID}
	task, err := env.tasks.CreateTask(ctx, authz.Manager(admin.ID), input)
	require.NoError(t, err)

	got, err := env.tasks.GetTask(ctx, authz.Member(assignee.ID), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = env.tasks.GetTask(ctx, authz.Member(outsider.ID), task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// unknown ids do not leak existence to non-managers
	_, err = env.tasks.GetTask(ctx, authz.Member(outsider.ID), 999)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.tasks.GetTask(ctx, authz.Manager(admin.ID), 999)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasks_OrderAndScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin@fae.org", "Admin", "administrateur")
	caps := authz.Manager(admin.ID)
	member := env.createUser(t, "m@fae.org", "Marie")

	create := func(title, start string, assignees ...uint64) *models.Task {
		input := backOfficeInput(title)
		input.StartDate = start
		input.AssigneeIDs = assignees
		task, err := env.tasks.CreateTask(ctx, caps, input)
		require.NoError(t, err)
		return task
	}
	older := create("older", "2024-01-01", member.ID)
	sameDayA := create("same day a", "2024-06-01")
	sameDayB := create("same day b", "2024-06-01", member.ID)

	tasks, total, err := env.tasks.ListTasks(ctx, caps, ListTasksInput{Scope: ScopeAll()})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, tasks, 3)
	assert.Equal(t, []uint64{sameDayB.ID, sameDayA.ID, older.ID},
		[]uint64{tasks[0].ID, tasks[1].ID, tasks[2].ID})

	mine, total, err := env.tasks.ListTasks(ctx, authz.Member(member.ID), ListTasksInput{Scope: ScopeAssignedTo(member.ID)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, mine, 2)
	assert.Equal(t, sameDayB.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	_, _, err = env.tasks.ListTasks(ctx, authz.Member(member.ID), ListTasksInput{Scope: ScopeAll()})
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = env.tasks.ListTasks(ctx, authz.Member(member.ID), ListTasksInput{Scope: ScopeAssignedTo(admin.ID)})
	assert.ErrorIs(t, err, ErrForbidden)

	page, total, err := env.tasks.ListTasks(ctx, caps, ListTasksInput{Scope: ScopeAll(), Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, d.Location())

	d, err = parseDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseDate("2023-02-29")
	assert.Error(t, err)
}
