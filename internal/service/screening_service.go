package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/dto"
	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/internal/repository"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type screeningRepository interface {
	Create(ctx context.Context, screening *models.Screening) error
	FindByID(ctx context.Context, id string) (*models.Screening, error)
	ListByChild(ctx context.Context, filter models.ScreeningFilter) ([]models.Screening, int, error)
	UpdateNotes(ctx context.Context, id string, notes *string) error
	ListAnswers(ctx context.Context, screeningID string) ([]models.Answer, error)
	ListResults(ctx context.Context, screeningID string) ([]models.DomainResult, error)
	SaveAnswers(ctx context.Context, screeningID string, version int, answers []models.Answer) error
	Complete(ctx context.Context, screening *models.Screening, results []models.DomainResult) error
	Cancel(ctx context.Context, id string, version int) error
}

// ChildProvider resolves children from the local table or the remote registry.
type ChildProvider interface {
	FindByID(ctx context.Context, id string) (*models.Child, error)
}

type catalogProvider interface {
	Catalog() (*asq3.Catalog, error)
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// ActorFromClaims converts token claims into an Actor.
func ActorFromClaims(claims *models.JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role}
}

// ScreeningOptions tunes ScreeningService.
type ScreeningOptions struct {
	MaxRetries int
	Now        func() time.Time
}

// ScreeningService runs the screening workflow: start, answer, complete or cancel.
type ScreeningService struct {
	repo      screeningRepository
	children  ChildProvider
	reference catalogProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	tracer    trace.Tracer
	opts      ScreeningOptions
}

// NewScreeningService constructs the screening service.
func NewScreeningService(
	repo screeningRepository,
	children ChildProvider,
	reference catalogProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ScreeningOptions,
) *ScreeningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScreeningService{
		repo:      repo,
		children:  children,
		reference: reference,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		tracer:    otel.Tracer("github.com/noah-isme/asq3-api/internal/service"),
		opts:      opts,
	}
}

// Start opens an in-progress screening for a child, choosing the age interval
// from the child's age on the screening date.
func (s *ScreeningService) Start(ctx context.Context, actor Actor, childID string, req dto.StartScreeningRequest) (result *models.ScreeningDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "screening.start", trace.WithAttributes(attribute.String("child.id", childID)))
	defer func() { endSpan(span, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid screening payload")
	}

	child, err := s.loadChild(ctx, actor, childID)
	if err != nil {
		return nil, err
	}
	if !child.IsActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "child is not active")
	}

	today := dateOf(s.opts.Now())
	screeningDate := today
	if req.ScreeningDate != nil {
		parsed, perr := time.Parse(dateLayout, *req.ScreeningDate)
		if perr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "screening_date must be YYYY-MM-DD")
		}
		screeningDate = parsed
	}
	if screeningDate.After(today) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "screening_date cannot be in the future")
	}
	if screeningDate.Before(dateOf(child.Birthday)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "screening_date is before the child's birthday")
	}

	catalog, err := s.reference.Catalog()
	if err != nil {
		return nil, err
	}

	ageDays := asq3.AgeInDays(child.Birthday, screeningDate)
	interval, err := catalog.Resolve(ageDays)
	if err != nil {
		switch {
		case errors.Is(err, asq3.ErrAgeOutOfRange):
			return nil, appErrors.Detail(appErrors.ErrOutOfRange, "child age of %d days is outside the supported screening range", ageDays)
		case errors.Is(err, asq3.ErrNoIntervals):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no age intervals are configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve age interval")
	}
	if len(catalog.QuestionSet(interval.ID)) == 0 {
		return nil, appErrors.Detail(appErrors.ErrPreconditionFailed, "no questions are configured for %s", interval.AgeLabel)
	}

	screening := &models.Screening{
		ChildID:              child.ID,
		AgeIntervalID:        interval.ID,
		ScreeningDate:        screeningDate,
		AgeAtScreeningMonths: asq3.AgeInMonths(child.Birthday, screeningDate),
		AgeAtScreeningDays:   ageDays,
		Status:               models.ScreeningInProgress,
		Notes:                req.Notes,
		Version:              1,
	}
	if actor.UserID != "" {
		createdBy := actor.UserID
		screening.CreatedBy = &createdBy
	}
	if err := s.repo.Create(ctx, screening); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create screening")
	}

	s.metrics.ScreeningStarted()
	span.SetAttributes(attribute.String("screening.id", screening.ID), attribute.Int("asq3.age_months", interval.AgeMonths))
	s.logger.Info("screening started",
		zap.String("screening_id", screening.ID),
		zap.String("child_id", child.ID),
		zap.Int("age_days", ageDays),
		zap.Int("interval_months", interval.AgeMonths),
	)

	return &models.ScreeningDetail{Screening: *screening, AgeLabel: interval.AgeLabel, Answers: []models.Answer{}}, nil
}

// ListByChild returns a page of a child's screenings, newest first.
func (s *ScreeningService) ListByChild(ctx context.Context, actor Actor, childID string, query dto.ListScreeningsQuery) ([]models.ScreeningSummary, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list query")
	}
	if _, err := s.loadChild(ctx, actor, childID); err != nil {
		return nil, nil, err
	}

	filter := models.ScreeningFilter{ChildID: childID, Page: query.Page, PageSize: query.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if query.Status != "" {
		status := models.ScreeningStatus(query.Status)
		filter.Status = &status
	}

	items, total, err := s.repo.ListByChild(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list screenings")
	}

	catalog, _ := s.reference.Catalog()
	summaries := make([]models.ScreeningSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, models.ScreeningSummary{Screening: item, AgeLabel: ageLabel(catalog, item.AgeIntervalID)})
	}
	return summaries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a screening with its answers and, once completed, its results.
func (s *ScreeningService) Get(ctx context.Context, actor Actor, id string) (*models.ScreeningDetail, error) {
	screening, err := s.loadScreening(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.ListAnswers(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load answers")
	}
	if answers == nil {
		answers = []models.Answer{}
	}

	catalog, _ := s.reference.Catalog()
	detail := &models.ScreeningDetail{Screening: *screening, AgeLabel: ageLabel(catalog, screening.AgeIntervalID), Answers: answers}
	if screening.Status == models.ScreeningCompleted {
		results, err := s.repo.ListResults(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
		}
		detail.Results = buildResultsView(catalog, screening, results).Domains
	}
	return detail, nil
}

// UpdateNotes replaces the free-text notes. It is allowed in every state.
func (s *ScreeningService) UpdateNotes(ctx context.Context, actor Actor, id string, req dto.UpdateNotesRequest) (*models.Screening, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notes payload")
	}
	if _, err := s.loadScreening(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateNotes(ctx, id, req.Notes); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "screening not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notes")
	}
	screening, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload screening")
	}
	return screening, nil
}

// SubmitAnswers validates and stores a batch of answers. Either the whole batch
// is written or nothing is; the screening stays in progress.
func (s *ScreeningService) SubmitAnswers(ctx context.Context, actor Actor, id string, req dto.SubmitAnswersRequest) (result *dto.SubmitAnswersResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "screening.submit_answers", trace.WithAttributes(
		attribute.String("screening.id", id),
		attribute.Int("asq3.batch_size", len(req.Answers)),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answers payload")
	}
	seen := make(map[string]struct{}, len(req.Answers))
	for _, item := range req.Answers {
		if _, dup := seen[item.QuestionID]; dup {
			return nil, appErrors.Detail(appErrors.ErrValidation, "question %s appears more than once in the batch", item.QuestionID)
		}
		seen[item.QuestionID] = struct{}{}
	}

	if _, err := s.loadScreening(ctx, actor, id); err != nil {
		return nil, err
	}

	var screening *models.Screening
	err = s.withRetry(ctx, id, func(current *models.Screening, catalog *asq3.Catalog) error {
		if current.Status != models.ScreeningInProgress {
			return stateError(current.Status, "submit answers")
		}
		answers := make([]models.Answer, 0, len(req.Answers))
		for _, item := range req.Answers {
			question, ok := catalog.Question(item.QuestionID)
			if !ok {
				return appErrors.Detail(appErrors.ErrNotFound, "question %s not found", item.QuestionID)
			}
			if question.AgeIntervalID != current.AgeIntervalID {
				return appErrors.Detail(appErrors.ErrMismatch, "question %s does not belong to the screening age interval", item.QuestionID)
			}
			value := models.AnswerValue(item.Answer)
			score, serr := asq3.ScoreAnswer(value)
			if serr != nil {
				return appErrors.Wrap(serr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, serr.Error())
			}
			answers = append(answers, models.Answer{QuestionID: item.QuestionID, Answer: value, Score: score})
		}
		if err := s.repo.SaveAnswers(ctx, current.ID, current.Version, answers); err != nil {
			return err
		}
		screening = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	progress, err := s.progress(ctx, screening)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("answers saved",
		zap.String("screening_id", id),
		zap.Int("count", len(req.Answers)),
		zap.Int("answered", progress.AnsweredQuestions),
	)
	return &dto.SubmitAnswersResponse{ScreeningID: id, SavedCount: len(req.Answers), Progress: *progress}, nil
}

// Complete scores and classifies every domain and closes the screening. Every
// question of the interval must be answered; otherwise nothing is written.
func (s *ScreeningService) Complete(ctx context.Context, actor Actor, id string) (result *models.ScreeningResults, err error) {
	ctx, span := s.tracer.Start(ctx, "screening.complete", trace.WithAttributes(attribute.String("screening.id", id)))
	defer func() { endSpan(span, err) }()

	if _, err := s.loadScreening(ctx, actor, id); err != nil {
		return nil, err
	}

	err = s.withRetry(ctx, id, func(current *models.Screening, catalog *asq3.Catalog) error {
		if current.Status != models.ScreeningInProgress {
			return stateError(current.Status, "complete")
		}
		if _, ok := catalog.Interval(current.AgeIntervalID); !ok {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "age interval of the screening is no longer configured")
		}
		answers, err := s.repo.ListAnswers(ctx, current.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load answers")
		}

		eval, err := catalog.Evaluate(current.AgeIntervalID, answers)
		if err != nil {
			switch {
			case errors.Is(err, asq3.ErrIncomplete):
				missing := len(catalog.Unanswered(current.AgeIntervalID, answers))
				return appErrors.Detail(appErrors.ErrIncomplete, "%d questions are still unanswered", missing)
			case errors.Is(err, asq3.ErrMissingCutoff):
				return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "cutoff scores are missing for this age interval")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate screening")
		}

		completedAt := s.opts.Now().UTC()
		overall := eval.Overall
		pending := *current
		pending.OverallStatus = &overall
		pending.CompletedAt = &completedAt

		rows := make([]models.DomainResult, 0, len(eval.Domains))
		for _, outcome := range eval.Domains {
			maxScore := outcome.Cutoff.MaxScore
			if maxScore <= 0 {
				maxScore = asq3.MaxDomainScore
			}
			rows = append(rows, models.DomainResult{
				DomainID:        outcome.Domain.ID,
				TotalScore:      outcome.Total,
				CutoffScore:     outcome.Cutoff.CutoffScore,
				MonitoringScore: outcome.Cutoff.MonitoringScore,
				MaxScore:        maxScore,
				Status:          outcome.Status,
			})
		}
		if err := s.repo.Complete(ctx, &pending, rows); err != nil {
			return err
		}

		byDomain := make(map[models.DomainCode]models.DomainStatus, len(eval.Domains))
		for _, outcome := range eval.Domains {
			byDomain[outcome.Domain.Code] = outcome.Status
		}
		s.metrics.ScreeningCompleted(overall, byDomain)
		result = buildResultsView(catalog, &pending, rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("asq3.overall_status", string(result.OverallStatus)))
	s.cache.StoreResults(ctx, result)
	s.logger.Info("screening completed",
		zap.String("screening_id", id),
		zap.String("overall_status", string(result.OverallStatus)),
	)
	return result, nil
}

// Cancel moves an in-progress screening to cancelled. No results are written.
func (s *ScreeningService) Cancel(ctx context.Context, actor Actor, id string) (result *models.Screening, err error) {
	ctx, span := s.tracer.Start(ctx, "screening.cancel", trace.WithAttributes(attribute.String("screening.id", id)))
	defer func() { endSpan(span, err) }()

	if _, err := s.loadScreening(ctx, actor, id); err != nil {
		return nil, err
	}
	err = s.withRetry(ctx, id, func(current *models.Screening, _ *asq3.Catalog) error {
		if current.Status != models.ScreeningInProgress {
			return stateError(current.Status, "cancel")
		}
		return s.repo.Cancel(ctx, current.ID, current.Version)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ScreeningCancelled()
	s.logger.Info("screening cancelled", zap.String("screening_id", id))
	screening, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload screening")
	}
	return screening, nil
}

// Progress reports answered/total counts overall and per domain.
func (s *ScreeningService) Progress(ctx context.Context, actor Actor, id string) (*models.ScreeningProgress, error) {
	screening, err := s.loadScreening(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.progress(ctx, screening)
}

// Results returns the outcome view of a completed screening. The boolean
// reports whether it was served from cache.
func (s *ScreeningService) Results(ctx context.Context, actor Actor, id string) (*models.ScreeningResults, bool, error) {
	screening, err := s.loadScreening(ctx, actor, id)
	if err != nil {
		return nil, false, err
	}
	if screening.Status != models.ScreeningCompleted {
		return nil, false, stateError(screening.Status, "read results")
	}
	if cached, ok := s.cache.CachedResults(ctx, id); ok {
		return cached, true, nil
	}

	results, err := s.repo.ListResults(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}
	catalog, _ := s.reference.Catalog()
	view := buildResultsView(catalog, screening, results)
	s.cache.StoreResults(ctx, view)
	return view, false, nil
}

// Recommendations returns, for every domain of a completed screening that is
// not classified sesuai, the recommendation texts of its age interval.
func (s *ScreeningService) Recommendations(ctx context.Context, actor Actor, id string) (*dto.ScreeningRecommendations, error) {
	results, _, err := s.Results(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.reference.Catalog()
	if err != nil {
		return nil, err
	}

	out := &dto.ScreeningRecommendations{
		ScreeningID:   results.ScreeningID,
		AgeIntervalID: results.AgeIntervalID,
		Domains:       make(map[models.DomainCode]dto.DomainRecommendations),
	}
	for _, domain := range results.Domains {
		if domain.Status == models.StatusSesuai {
			continue
		}
		out.Domains[domain.DomainCode] = dto.DomainRecommendations{
			DomainID:        domain.DomainID,
			DomainCode:      domain.DomainCode,
			DomainName:      domain.DomainName,
			Status:          domain.Status,
			Recommendations: catalog.RecommendationsFor(domain.DomainID, results.AgeIntervalID),
		}
	}
	return out, nil
}

// CompletedScreening returns a completed screening after access checks. Used by
// follow-up features that only apply to finished screenings.
func (s *ScreeningService) CompletedScreening(ctx context.Context, actor Actor, id string) (*models.Screening, error) {
	screening, err := s.loadScreening(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if screening.Status != models.ScreeningCompleted {
		return nil, stateError(screening.Status, "manage interventions")
	}
	return screening, nil
}

// Child returns the child a screening belongs to, after access checks.
func (s *ScreeningService) Child(ctx context.Context, actor Actor, childID string) (*models.Child, error) {
	return s.loadChild(ctx, actor, childID)
}

func (s *ScreeningService) progress(ctx context.Context, screening *models.Screening) (*models.ScreeningProgress, error) {
	catalog, err := s.reference.Catalog()
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.ListAnswers(ctx, screening.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load answers")
	}
	progress := asq3.ComputeProgress(*screening, catalog.Domains(), catalog.QuestionsFor(screening.AgeIntervalID), answers)
	return &progress, nil
}

// withRetry re-reads the screening and reruns fn while the repository reports a
// version conflict, up to MaxRetries attempts.
func (s *ScreeningService) withRetry(ctx context.Context, id string, fn func(current *models.Screening, catalog *asq3.Catalog) error) error {
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if isNoRows(err) {
				return appErrors.Clone(appErrors.ErrNotFound, "screening not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load screening")
		}
		catalog, err := s.reference.Catalog()
		if err != nil {
			return err
		}

		err = fn(current, catalog)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) {
				return err
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update screening")
		}

		s.metrics.VersionConflict()
		s.logger.Debug("screening version conflict", zap.String("screening_id", id), zap.Int("attempt", attempt))
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return appErrors.Clone(appErrors.ErrConflict, "screening was modified concurrently, please retry")
}

func (s *ScreeningService) loadScreening(ctx context.Context, actor Actor, id string) (*models.Screening, error) {
	screening, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "screening not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load screening")
	}
	if actor.Role == models.RoleParent {
		if _, err := s.loadChild(ctx, actor, screening.ChildID); err != nil {
			return nil, err
		}
	}
	return screening, nil
}

// loadChild fetches a child; parents may only reach their own children.
func (s *ScreeningService) loadChild(ctx context.Context, actor Actor, childID string) (*models.Child, error) {
	child, err := s.children.FindByID(ctx, childID)
	if err != nil {
		if isNoRows(err) || errors.Is(err, ErrChildNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load child")
	}
	if actor.Role == models.RoleParent && (child.ParentID == nil || *child.ParentID != actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "child belongs to another parent")
	}
	return child, nil
}

func buildResultsView(catalog *asq3.Catalog, screening *models.Screening, results []models.DomainResult) *models.ScreeningResults {
	view := &models.ScreeningResults{
		ScreeningID:   screening.ID,
		ChildID:       screening.ChildID,
		AgeIntervalID: screening.AgeIntervalID,
		AgeLabel:      ageLabel(catalog, screening.AgeIntervalID),
		ScreeningDate: screening.ScreeningDate,
		CompletedAt:   screening.CompletedAt,
		Domains:       make([]models.DomainResultView, 0, len(results)),
	}

	order := make(map[string]int, len(results))
	statuses := make([]models.DomainStatus, 0, len(results))
	for _, r := range results {
		item := models.DomainResultView{
			DomainID:        r.DomainID,
			TotalScore:      r.TotalScore,
			CutoffScore:     r.CutoffScore,
			MonitoringScore: r.MonitoringScore,
			MaxScore:        r.MaxScore,
			Status:          r.Status,
			StatusLabel:     r.Status.Label(),
		}
		if catalog != nil {
			if domain, ok := catalog.Domain(r.DomainID); ok {
				item.DomainCode = domain.Code
				item.DomainName = domain.Name
				order[r.DomainID] = domain.DisplayOrder
			}
		}
		if item.MaxScore <= 0 {
			item.MaxScore = asq3.MaxDomainScore
		}
		view.Domains = append(view.Domains, item)
		statuses = append(statuses, r.Status)
	}
	sort.SliceStable(view.Domains, func(i, j int) bool {
		return order[view.Domains[i].DomainID] < order[view.Domains[j].DomainID]
	})

	if screening.OverallStatus != nil {
		view.OverallStatus = *screening.OverallStatus
	} else {
		view.OverallStatus = asq3.Aggregate(statuses)
	}
	view.OverallLabel = view.OverallStatus.Label()
	return view
}

func ageLabel(catalog *asq3.Catalog, intervalID string) string {
	if catalog == nil {
		return ""
	}
	if interval, ok := catalog.Interval(intervalID); ok {
		return interval.AgeLabel
	}
	return ""
}

func stateError(status models.ScreeningStatus, action string) error {
	return appErrors.Detail(appErrors.ErrInvalidState, "cannot %s: screening is %s", action, status)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
