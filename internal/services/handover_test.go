package services

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/modules/continuity"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
)

func TestHandoverCreateAndList(t *testing.T) {
	e := newEnv(t)
	hs := e.handoverService()
	manager := e.seed(t, "m@example.com", types.RoleManager)
	emp := e.seed(t, "e@example.com", types.RoleEmployee)
	succ := e.seed(t, "s@example.com", types.RoleEmployee)

	late := time.Now().Add(60 * 24 * time.Hour)
	early := time.Now().Add(7 * 24 * time.Hour)

	_, err := hs.Create(e.as(emp), HandoverInput{EmployeeID: &emp.ID, ExitDate: &late})
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))

	ghost := uuid.New()
	_, err = hs.Create(e.as(manager), HandoverInput{EmployeeID: &ghost, ExitDate: &late})
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = hs.Create(e.as(manager), HandoverInput{EmployeeID: &emp.ID, ExitDate: &late, SuccessorID: &ghost})
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = hs.Create(e.as(manager), HandoverInput{EmployeeID: &emp.ID})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	h1, err := hs.Create(e.as(manager), HandoverInput{
		EmployeeID:  &emp.ID,
		ExitDate:    &late,
		SuccessorID: &succ.ID,
		Tasks:       []types.HandoverTask{{Title: "Hand over keys"}},
		KnowledgeItems: []types.HandoverKnowledgeItem{
			{KnowledgeID: uuid.New(), Notes: "read first"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, types.HandoverPlanned, h1.Status)
	assert.Equal(t, types.TaskPending, h1.Tasks[0].Status)
	assert.Equal(t, types.ImportanceMedium, h1.KnowledgeItems[0].Importance)
	require.NotNil(t, h1.Employee)
	require.NotNil(t, h1.Successor)
	assert.Equal(t, succ.Email, h1.Successor.Email)
	assert.Nil(t, h1.InterviewTranscript)

	h2, err := hs.Create(e.as(manager), HandoverInput{EmployeeID: &succ.ID, ExitDate: &early, Status: strPtr(types.HandoverInProgress)})
	require.NoError(t, err)

	all, err := hs.List(e.as(emp), HandoverListParams{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, h2.ID, all[0].ID, "ordered by exit date")

	filtered, err := hs.List(e.as(emp), HandoverListParams{Status: types.HandoverInProgress})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, h2.ID, filtered[0].ID)

	byEmp, err := hs.List(e.as(emp), HandoverListParams{EmployeeID: emp.ID})
	require.NoError(t, err)
	require.Len(t, byEmp, 1)
	assert.Equal(t, h1.ID, byEmp[0].ID)
}

func TestHandoverUpdateAccess(t *testing.T) {
	e := newEnv(t)
	hs := e.handoverService()
	admin := e.seed(t, "a@example.com", types.RoleAdmin)
	emp := e.seed(t, "e@example.com", types.RoleEmployee)
	other := e.seed(t, "o@example.com", types.RoleEmployee)
	exit := time.Now().Add(24 * time.Hour)

	h, err := hs.Create(e.as(admin), HandoverInput{EmployeeID: &emp.ID, ExitDate: &exit})
	require.NoError(t, err)

	_, err = hs.Update(e.as(other), h.ID, HandoverInput{Status: strPtr(types.HandoverCompleted)})
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))

	updated, err := hs.Update(e.as(emp), h.ID, HandoverInput{Status: strPtr(types.HandoverInProgress)})
	require.NoError(t, err)
	assert.Equal(t, types.HandoverInProgress, updated.Status)

	_, err = hs.Update(e.as(emp), h.ID, HandoverInput{Status: strPtr("done")})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(hs.Delete(e.as(emp), h.ID)))
	require.NoError(t, hs.Delete(e.as(admin), h.ID))
	_, err = hs.Get(e.as(admin), h.ID)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
}

func TestHandoverSummaryRequiresTranscript(t *testing.T) {
	e := newEnv(t)
	hs := e.handoverService()
	manager := e.seed(t, "m@example.com", types.RoleManager)
	emp := e.seed(t, "e@example.com", types.RoleEmployee)
	exit := time.Now().Add(24 * time.Hour)

	h, err := hs.Create(e.as(manager), HandoverInput{EmployeeID: &emp.ID, ExitDate: &exit})
	require.NoError(t, err)

	_, err = hs.GenerateSummary(e.as(manager), h.ID)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	assert.Equal(t, 0, e.summarizer.calls, "reasoning service must not be called")

	_, err = hs.AttachInterview(e.as(emp), h.ID, "  ")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	withTranscript, err := hs.AttachInterview(e.as(emp), h.ID, "I maintained the billing cron.")
	require.NoError(t, err)
	require.NotNil(t, withTranscript.InterviewTranscript)
	require.NotNil(t, withTranscript.InterviewDate)

	res, err := hs.GenerateSummary(e.as(emp), h.ID)
	require.NoError(t, err)
	assert.Equal(t, "summary text", res.Summary)
	require.NotNil(t, res.Handover.InterviewSummary)
	assert.Equal(t, "summary text", *res.Handover.InterviewSummary)
	assert.Equal(t, 1, e.summarizer.calls)
}

func TestHandoverSummaryUpstreamFailure(t *testing.T) {
	e := newEnv(t)
	hs := e.handoverService()
	manager := e.seed(t, "m@example.com", types.RoleManager)
	emp := e.seed(t, "e@example.com", types.RoleEmployee)
	exit := time.Now().Add(24 * time.Hour)

	h, err := hs.Create(e.as(manager), HandoverInput{EmployeeID: &emp.ID, ExitDate: &exit})
	require.NoError(t, err)
	_, err = hs.AttachInterview(e.as(manager), h.ID, "transcript")
	require.NoError(t, err)

	e.summarizer.err = errors.Join(continuity.ErrReasoningFailed, errors.New("boom"))
	_, err = hs.GenerateSummary(e.as(manager), h.ID)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))

	stored, err := hs.Get(e.as(manager), h.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InterviewSummary)
}
