package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/dto"
	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/internal/repository"
	"github.com/noah-isme/asq3-api/internal/seed"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
)

type mockScreeningRepo struct {
	screenings    map[string]models.Screening
	answers       map[string]map[string]models.Answer
	results       map[string][]models.DomainResult
	conflicts     int
	saveCalls     int
	completeCalls int
	seq           int
	now           func() time.Time
}

func newMockScreeningRepo(now func() time.Time) *mockScreeningRepo {
	return &mockScreeningRepo{
		screenings: make(map[string]models.Screening),
		answers:    make(map[string]map[string]models.Answer),
		results:    make(map[string][]models.DomainResult),
		now:        now,
	}
}

func (m *mockScreeningRepo) Create(ctx context.Context, screening *models.Screening) error {
	m.seq++
	screening.ID = fmt.Sprintf("screening-%d", m.seq)
	screening.CreatedAt = m.now()
	screening.UpdatedAt = screening.CreatedAt
	m.screenings[screening.ID] = *screening
	return nil
}

func (m *mockScreeningRepo) FindByID(ctx context.Context, id string) (*models.Screening, error) {
	s, ok := m.screenings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *mockScreeningRepo) ListByChild(ctx context.Context, filter models.ScreeningFilter) ([]models.Screening, int, error) {
	var out []models.Screening
	for _, s := range m.screenings {
		if s.ChildID != filter.ChildID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (m *mockScreeningRepo) UpdateNotes(ctx context.Context, id string, notes *string) error {
	s, ok := m.screenings[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.Notes = notes
	m.screenings[id] = s
	return nil
}

func (m *mockScreeningRepo) ListAnswers(ctx context.Context, screeningID string) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range m.answers[screeningID] {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockScreeningRepo) ListResults(ctx context.Context, screeningID string) ([]models.DomainResult, error) {
	return m.results[screeningID], nil
}

func (m *mockScreeningRepo) bump(id string, version int) error {
	if m.conflicts > 0 {
		m.conflicts--
		s := m.screenings[id]
		s.Version++
		m.screenings[id] = s
		return repository.ErrVersionConflict
	}
	s := m.screenings[id]
	if s.Version != version || s.Status != models.ScreeningInProgress {
		return repository.ErrVersionConflict
	}
	s.Version++
	m.screenings[id] = s
	return nil
}

func (m *mockScreeningRepo) SaveAnswers(ctx context.Context, screeningID string, version int, answers []models.Answer) error {
	m.saveCalls++
	if err := m.bump(screeningID, version); err != nil {
		return err
	}
	if m.answers[screeningID] == nil {
		m.answers[screeningID] = make(map[string]models.Answer)
	}
	now := m.now()
	for _, a := range answers {
		existing, ok := m.answers[screeningID][a.QuestionID]
		if ok && existing.Answer == a.Answer {
			continue
		}
		a.ScreeningID = screeningID
		a.UpdatedAt = now
		if ok {
			a.CreatedAt = existing.CreatedAt
		} else {
			a.CreatedAt = now
		}
		m.answers[screeningID][a.QuestionID] = a
	}
	return nil
}

func (m *mockScreeningRepo) Complete(ctx context.Context, screening *models.Screening, results []models.DomainResult) error {
	m.completeCalls++
	if err := m.bump(screening.ID, screening.Version); err != nil {
		return err
	}
	s := m.screenings[screening.ID]
	s.Status = models.ScreeningCompleted
	s.OverallStatus = screening.OverallStatus
	s.CompletedAt = screening.CompletedAt
	m.screenings[screening.ID] = s
	m.results[screening.ID] = results
	screening.Status = models.ScreeningCompleted
	return nil
}

func (m *mockScreeningRepo) Cancel(ctx context.Context, id string, version int) error {
	if err := m.bump(id, version); err != nil {
		return err
	}
	s := m.screenings[id]
	s.Status = models.ScreeningCancelled
	m.screenings[id] = s
	return nil
}

type mockChildren map[string]models.Child

func (m mockChildren) FindByID(ctx context.Context, id string) (*models.Child, error) {
	c, ok := m[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type staticCatalog struct {
	catalog *asq3.Catalog
}

func (s staticCatalog) Catalog() (*asq3.Catalog, error) {
	return s.catalog, nil
}

type screeningFixture struct {
	svc      *ScreeningService
	repo     *mockScreeningRepo
	catalog  *asq3.Catalog
	nurse    Actor
	interval string
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newScreeningFixture(t *testing.T) *screeningFixture {
	t.Helper()
	data, err := seed.Load("")
	require.NoError(t, err)
	catalog, err := asq3.NewCatalog(data)
	require.NoError(t, err)

	parent := "parent-1"
	children := mockChildren{
		"child-12m": {ID: "child-12m", ParentID: &parent, Name: "Ayu", Birthday: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
		"child-old": {ID: "child-old", Name: "Budi", Birthday: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
		"child-off": {ID: "child-off", Name: "Citra", Birthday: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), IsActive: false},
	}
	clock := func() time.Time { return fixedNow }
	repo := newMockScreeningRepo(clock)
	svc := NewScreeningService(repo, children, staticCatalog{catalog}, nil, NewMetricsService(), nil, nil, ScreeningOptions{Now: clock})

	return &screeningFixture{
		svc:      svc,
		repo:     repo,
		catalog:  catalog,
		nurse:    Actor{UserID: "nakes-1", Role: models.RoleNakes},
		interval: seed.ID("interval", 12),
	}
}

func (f *screeningFixture) start(t *testing.T) string {
	t.Helper()
	detail, err := f.svc.Start(context.Background(), f.nurse, "child-12m", dto.StartScreeningRequest{})
	require.NoError(t, err)
	return detail.ID
}

func (f *screeningFixture) answerAll(value string, override map[string]string) []dto.AnswerItem {
	var items []dto.AnswerItem
	for _, q := range f.catalog.QuestionSet(f.interval) {
		answer := value
		if v, ok := override[q.ID]; ok {
			answer = v
		}
		items = append(items, dto.AnswerItem{QuestionID: q.ID, Answer: answer})
	}
	return items
}

func TestScreeningServiceEndToEndAllYes(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Start(ctx, f.nurse, "child-12m", dto.StartScreeningRequest{})
	require.NoError(t, err)
	assert.Equal(t, f.interval, detail.AgeIntervalID)
	assert.Equal(t, "12 Bulan", detail.AgeLabel)
	assert.Equal(t, 365, detail.AgeAtScreeningDays)
	assert.Equal(t, 12, detail.AgeAtScreeningMonths)
	assert.Equal(t, models.ScreeningInProgress, detail.Status)
	require.Len(t, f.catalog.QuestionSet(f.interval), 30)

	submitted, err := f.svc.SubmitAnswers(ctx, f.nurse, detail.ID, dto.SubmitAnswersRequest{Answers: f.answerAll("yes", nil)})
	require.NoError(t, err)
	assert.Equal(t, 30, submitted.SavedCount)
	assert.Equal(t, 100, submitted.Progress.ProgressPercent)
	assert.Equal(t, models.ScreeningInProgress, f.repo.screenings[detail.ID].Status)

	results, err := f.svc.Complete(ctx, f.nurse, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSesuai, results.OverallStatus)
	assert.Equal(t, "Perkembangan Sesuai", results.OverallLabel)
	require.Len(t, results.Domains, 5)
	for i, d := range results.Domains {
		assert.Equal(t, models.DomainCodes[i], d.DomainCode)
		assert.Equal(t, 60.0, d.TotalScore)
		assert.Equal(t, models.StatusSesuai, d.Status)
	}

	recs, err := f.svc.Recommendations(ctx, f.nurse, detail.ID)
	require.NoError(t, err)
	assert.Empty(t, recs.Domains)
}

func TestScreeningServicePantauDomainGetsRecommendations(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	// 6 x sometimes = 30, between cutoff 15.64 and monitoring 37.82.
	override := map[string]string{}
	for i := 1; i <= 6; i++ {
		override[seed.ID("question", 12, models.DomainCommunication, i)] = "sometimes"
	}

	_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: f.answerAll("yes", override)})
	require.NoError(t, err)

	results, err := f.svc.Complete(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPantau, results.OverallStatus)
	assert.Equal(t, 30.0, results.Domains[0].TotalScore)
	assert.Equal(t, models.StatusPantau, results.Domains[0].Status)
	assert.InDelta(t, 37.82, results.Domains[0].MonitoringScore, 0.001)

	recs, err := f.svc.Recommendations(ctx, f.nurse, id)
	require.NoError(t, err)
	require.Len(t, recs.Domains, 1)
	comm := recs.Domains[models.DomainCommunication]
	assert.Equal(t, models.StatusPantau, comm.Status)
	assert.NotEmpty(t, comm.Recommendations)
}

func TestScreeningServiceCompleteIncompleteWritesNothing(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	items := f.answerAll("yes", nil)[:10]
	_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: items})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, f.nurse, id)
	assert.ErrorIs(t, err, appErrors.ErrIncomplete)
	assert.Equal(t, 0, f.repo.completeCalls)
	assert.Equal(t, models.ScreeningInProgress, f.repo.screenings[id].Status)
	assert.Empty(t, f.repo.results[id])
}

func TestScreeningServiceProgress(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	progress, err := f.svc.Progress(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Equal(t, 30, progress.TotalQuestions)
	assert.Equal(t, 0, progress.ProgressPercent)
	assert.Nil(t, progress.LastSavedAt)

	all := f.answerAll("no", nil)
	_, err = f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: all[:10]})
	require.NoError(t, err)
	progress, err = f.svc.Progress(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Equal(t, 33, progress.ProgressPercent)

	_, err = f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: all[10:15]})
	require.NoError(t, err)
	progress, err = f.svc.Progress(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Equal(t, 15, progress.AnsweredQuestions)
	assert.Equal(t, 50, progress.ProgressPercent)
	require.NotNil(t, progress.LastSavedAt)
	assert.Equal(t, fixedNow, *progress.LastSavedAt)
}

func TestScreeningServiceResubmittingAnswerIsIdempotent(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)
	questionID := f.catalog.QuestionSet(f.interval)[0].ID
	batch := func(answer string) dto.SubmitAnswersRequest {
		return dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{{QuestionID: questionID, Answer: answer}}}
	}

	_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, batch("yes"))
	require.NoError(t, err)

	later := fixedNow.Add(10 * time.Minute)
	f.repo.now = func() time.Time { return later }

	submitted, err := f.svc.SubmitAnswers(ctx, f.nurse, id, batch("yes"))
	require.NoError(t, err)
	require.Len(t, f.repo.answers[id], 1)
	stored := f.repo.answers[id][questionID]
	assert.Equal(t, 10, stored.Score)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
	assert.Equal(t, 1, submitted.Progress.AnsweredQuestions)
	require.NotNil(t, submitted.Progress.LastSavedAt)
	assert.Equal(t, fixedNow, *submitted.Progress.LastSavedAt)

	submitted, err = f.svc.SubmitAnswers(ctx, f.nurse, id, batch("no"))
	require.NoError(t, err)
	require.Len(t, f.repo.answers[id], 1)
	stored = f.repo.answers[id][questionID]
	assert.Equal(t, models.AnswerNo, stored.Answer)
	assert.Equal(t, 0, stored.Score)
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Equal(t, 1, submitted.Progress.AnsweredQuestions)
	require.NotNil(t, submitted.Progress.LastSavedAt)
	assert.Equal(t, later, *submitted.Progress.LastSavedAt)
	assert.Equal(t, models.ScreeningInProgress, f.repo.screenings[id].Status)
}

func TestScreeningServiceSubmitRejectsWholeBatch(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	valid := dto.AnswerItem{QuestionID: seed.ID("question", 12, models.DomainCommunication, 1), Answer: "yes"}

	cases := []struct {
		name  string
		items []dto.AnswerItem
		want  *appErrors.Error
	}{
		{"other interval", []dto.AnswerItem{valid, {QuestionID: seed.ID("question", 24, models.DomainCommunication, 1), Answer: "yes"}}, appErrors.ErrMismatch},
		{"unknown question", []dto.AnswerItem{valid, {QuestionID: "nope", Answer: "no"}}, appErrors.ErrNotFound},
		{"invalid value", []dto.AnswerItem{valid, {QuestionID: seed.ID("question", 12, models.DomainCommunication, 2), Answer: "maybe"}}, appErrors.ErrValidation},
		{"duplicate", []dto.AnswerItem{valid, valid}, appErrors.ErrValidation},
		{"empty", nil, appErrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: tc.items})
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.repo.answers[id])
		})
	}
}

func TestScreeningServiceTerminalStates(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: f.answerAll("yes", nil)})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, f.nurse, id)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.nurse, id)
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)
	_, err = f.svc.Complete(ctx, f.nurse, id)
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)
	_, err = f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: f.answerAll("no", nil)[:1]})
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)

	notes := "follow up in 2 months"
	updated, err := f.svc.UpdateNotes(ctx, f.nurse, id, dto.UpdateNotesRequest{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.Equal(t, models.ScreeningCompleted, updated.Status)
}

func TestScreeningServiceCancel(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	cancelled, err := f.svc.Cancel(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Equal(t, models.ScreeningCancelled, cancelled.Status)
	assert.Nil(t, cancelled.OverallStatus)

	_, _, err = f.svc.Results(ctx, f.nurse, id)
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)
}

func TestScreeningServiceRetriesVersionConflicts(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	f.repo.conflicts = 2
	_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: f.answerAll("yes", nil)[:3]})
	require.NoError(t, err)
	assert.Equal(t, 3, f.repo.saveCalls)
	assert.Len(t, f.repo.answers[id], 3)

	f.repo.conflicts = 3
	_, err = f.svc.Cancel(ctx, f.nurse, id)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, models.ScreeningInProgress, f.repo.screenings[id].Status)
}

func TestScreeningServiceStartErrors(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.nurse, "child-old", dto.StartScreeningRequest{})
	assert.ErrorIs(t, err, appErrors.ErrOutOfRange)

	_, err = f.svc.Start(ctx, f.nurse, "missing", dto.StartScreeningRequest{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Start(ctx, f.nurse, "child-off", dto.StartScreeningRequest{})
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	future := "2025-07-01"
	_, err = f.svc.Start(ctx, f.nurse, "child-12m", dto.StartScreeningRequest{ScreeningDate: &future})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	badFormat := "01/06/2025"
	_, err = f.svc.Start(ctx, f.nurse, "child-12m", dto.StartScreeningRequest{ScreeningDate: &badFormat})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	empty := NewScreeningService(f.repo, mockChildren{}, emptyCatalog{}, nil, nil, nil, nil, ScreeningOptions{})
	_, err = empty.Progress(ctx, f.nurse, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

type emptyCatalog struct{}

func (emptyCatalog) Catalog() (*asq3.Catalog, error) {
	return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "reference data is not loaded")
}

func TestScreeningServiceBackdatedStartPicksEarlierInterval(t *testing.T) {
	f := newScreeningFixture(t)

	date := "2024-08-01"
	detail, err := f.svc.Start(context.Background(), f.nurse, "child-12m", dto.StartScreeningRequest{ScreeningDate: &date})
	require.NoError(t, err)
	assert.Equal(t, 61, detail.AgeAtScreeningDays)
	assert.Equal(t, seed.ID("interval", 2), detail.AgeIntervalID)
}

func TestScreeningServiceParentAccess(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	owner := Actor{UserID: "parent-1", Role: models.RoleParent}
	stranger := Actor{UserID: "parent-2", Role: models.RoleParent}

	_, err := f.svc.Progress(ctx, owner, id)
	assert.NoError(t, err)

	_, err = f.svc.Progress(ctx, stranger, id)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, _, err = f.svc.ListByChild(ctx, stranger, "child-12m", dto.ListScreeningsQuery{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	items, page, err := f.svc.ListByChild(ctx, owner, "child-12m", dto.ListScreeningsQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "12 Bulan", items[0].AgeLabel)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 20, page.PageSize)
}

func TestScreeningServiceGetIncludesResultsWhenCompleted(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	detail, err := f.svc.Get(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Empty(t, detail.Answers)
	assert.Nil(t, detail.Results)

	_, err = f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: f.answerAll("no", nil)})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, f.nurse, id)
	require.NoError(t, err)

	detail, err = f.svc.Get(ctx, f.nurse, id)
	require.NoError(t, err)
	assert.Len(t, detail.Answers, 30)
	require.Len(t, detail.Results, 5)
	for _, r := range detail.Results {
		assert.Equal(t, models.StatusPerluRujukan, r.Status)
		assert.Equal(t, "Perlu Rujukan", r.StatusLabel)
	}
}

func TestScreeningServiceResultsKeepStoredMaxScore(t *testing.T) {
	f := newScreeningFixture(t)
	ctx := context.Background()
	id := f.start(t)

	_, err := f.svc.SubmitAnswers(ctx, f.nurse, id, dto.SubmitAnswersRequest{Answers: f.answerAll("yes", nil)})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, f.nurse, id)
	require.NoError(t, err)
	for _, row := range f.repo.results[id] {
		assert.Equal(t, 60.0, row.MaxScore)
	}

	data, err := seed.Load("")
	require.NoError(t, err)
	for i := range data.Cutoffs {
		data.Cutoffs[i].MaxScore = 50
	}
	edited, err := asq3.NewCatalog(data)
	require.NoError(t, err)
	later := NewScreeningService(f.repo, mockChildren{}, staticCatalog{edited}, nil, NewMetricsService(), nil, nil, ScreeningOptions{Now: func() time.Time { return fixedNow }})

	results, _, err := later.Results(ctx, f.nurse, id)
	require.NoError(t, err)
	require.Len(t, results.Domains, 5)
	for _, d := range results.Domains {
		assert.Equal(t, 60.0, d.MaxScore)
	}
}
