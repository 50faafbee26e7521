package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/export"
)

type fakeJobs map[string]entity.JobStatus

func (f fakeJobs) Job(id string) (entity.JobInput, entity.JobStatus, error) {
	st, ok := f[id]
	if !ok {
		return entity.JobInput{}, entity.JobStatus{}, common.NewAppError(common.CodeNotFound, "missing", common.ErrNotFound)
	}
	return entity.JobInput{DetectedLanguage: "en"}, st, nil
}

func TestJobXLSX(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	completed := started.Add(3 * time.Second)
	jobs := fakeJobs{
		"done": {
			State: constants.JobStateDone,
			Result: &entity.JobResult{
				Summary:     "Team decided to ship v2 next week.",
				Decisions:   []string{"Ship v2 next week"},
				ActionItems: []string{"Alice to prepare the rollout plan", "Bob to notify vendor"},
				Risks:       []string{},
			},
			StartedAt:   &started,
			CompletedAt: &completed,
		},
		"running": {State: constants.JobStateRunning, StartedAt: &started},
	}
	svc := export.NewService(jobs, nil)

	b, err := svc.JobXLSX(t.Context(), "done")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	meta, err := f.GetRows(export.SummarySheet)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Job ID", "done"},
		{"State", "Done"},
		{"Language", "en"},
		{"Started At", "2025-03-04T10:00:00Z"},
		{"Completed At", "2025-03-04T10:00:03Z"},
		{"Summary", "Team decided to ship v2 next week."},
	}, meta)

	items, err := f.GetRows(export.ItemsSheet)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Kind", "#", "Item"},
		{"Decision", "1", "Ship v2 next week"},
		{"Action Item", "1", "Alice to prepare the rollout plan"},
		{"Action Item", "2", "Bob to notify vendor"},
	}, items)

	_, err = svc.JobXLSX(t.Context(), "running")
	require.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.JobXLSX(t.Context(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}
