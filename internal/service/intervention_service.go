package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/dto"
	"github.com/noah-isme/asq3-api/internal/models"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
)

type interventionRepository interface {
	ListByScreening(ctx context.Context, screeningID string) ([]models.Intervention, error)
	FindByID(ctx context.Context, screeningID, id string) (*models.Intervention, error)
	Create(ctx context.Context, item *models.Intervention) error
	Update(ctx context.Context, item *models.Intervention) error
	Delete(ctx context.Context, screeningID, id string) error
}

type completedScreeningReader interface {
	CompletedScreening(ctx context.Context, actor Actor, id string) (*models.Screening, error)
}

// InterventionService manages follow-up actions on completed screenings.
type InterventionService struct {
	repo       interventionRepository
	screenings completedScreeningReader
	reference  catalogProvider
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewInterventionService constructs the intervention service. now may be nil.
func NewInterventionService(repo interventionRepository, screenings completedScreeningReader, reference catalogProvider, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *InterventionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &InterventionService{repo: repo, screenings: screenings, reference: reference, validator: validate, logger: logger, now: now}
}

// List returns the interventions of a completed screening.
func (s *InterventionService) List(ctx context.Context, actor Actor, screeningID string) ([]models.Intervention, error) {
	if _, err := s.screenings.CompletedScreening(ctx, actor, screeningID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByScreening(ctx, screeningID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interventions")
	}
	if items == nil {
		items = []models.Intervention{}
	}
	return items, nil
}

// Create records a new follow-up action. Type defaults to stimulation and status to planned.
func (s *InterventionService) Create(ctx context.Context, actor Actor, screeningID string, req dto.CreateInterventionRequest) (*models.Intervention, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intervention payload")
	}
	if _, err := s.screenings.CompletedScreening(ctx, actor, screeningID); err != nil {
		return nil, err
	}
	if err := s.checkDomain(req.DomainID); err != nil {
		return nil, err
	}
	followUp, err := s.parseFollowUp(req.FollowUpDate)
	if err != nil {
		return nil, err
	}

	item := &models.Intervention{
		ScreeningID:  screeningID,
		DomainID:     req.DomainID,
		Type:         models.InterventionStimulation,
		Action:       req.Action,
		Notes:        req.Notes,
		Status:       models.InterventionPlanned,
		FollowUpDate: followUp,
	}
	if req.Type != "" {
		item.Type = models.InterventionType(req.Type)
	}
	if actor.UserID != "" {
		createdBy := actor.UserID
		item.CreatedBy = &createdBy
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create intervention")
	}
	s.logger.Info("intervention created",
		zap.String("screening_id", screeningID),
		zap.String("intervention_id", item.ID),
		zap.String("type", string(item.Type)),
	)
	return item, nil
}

// Update changes the provided fields of an intervention.
func (s *InterventionService) Update(ctx context.Context, actor Actor, screeningID, id string, req dto.UpdateInterventionRequest) (*models.Intervention, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intervention payload")
	}
	item, err := s.load(ctx, actor, screeningID, id)
	if err != nil {
		return nil, err
	}

	if req.DomainID != nil {
		if err := s.checkDomain(req.DomainID); err != nil {
			return nil, err
		}
		item.DomainID = req.DomainID
	}
	if req.Type != nil {
		item.Type = models.InterventionType(*req.Type)
	}
	if req.Action != nil {
		item.Action = *req.Action
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}
	if req.FollowUpDate != nil {
		followUp, err := s.parseFollowUp(req.FollowUpDate)
		if err != nil {
			return nil, err
		}
		item.FollowUpDate = followUp
	}
	if req.Status != nil {
		s.transition(item, models.InterventionStatus(*req.Status))
	}

	return s.save(ctx, item)
}

// Complete marks an intervention as done.
func (s *InterventionService) Complete(ctx context.Context, actor Actor, screeningID, id string) (*models.Intervention, error) {
	item, err := s.load(ctx, actor, screeningID, id)
	if err != nil {
		return nil, err
	}
	s.transition(item, models.InterventionCompleted)
	return s.save(ctx, item)
}

// Delete removes an intervention.
func (s *InterventionService) Delete(ctx context.Context, actor Actor, screeningID, id string) error {
	if _, err := s.screenings.CompletedScreening(ctx, actor, screeningID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, screeningID, id); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "intervention not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete intervention")
	}
	s.logger.Info("intervention deleted", zap.String("screening_id", screeningID), zap.String("intervention_id", id))
	return nil
}

func (s *InterventionService) load(ctx context.Context, actor Actor, screeningID, id string) (*models.Intervention, error) {
	if _, err := s.screenings.CompletedScreening(ctx, actor, screeningID); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, screeningID, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intervention not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intervention")
	}
	return item, nil
}

func (s *InterventionService) save(ctx context.Context, item *models.Intervention) (*models.Intervention, error) {
	if err := s.repo.Update(ctx, item); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intervention not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intervention")
	}
	return item, nil
}

// transition stamps completed_at on entering completed and clears it on leaving.
func (s *InterventionService) transition(item *models.Intervention, next models.InterventionStatus) {
	if next == models.InterventionCompleted && item.Status != models.InterventionCompleted {
		now := s.now().UTC()
		item.CompletedAt = &now
	}
	if next != models.InterventionCompleted {
		item.CompletedAt = nil
	}
	item.Status = next
}

func (s *InterventionService) checkDomain(domainID *string) error {
	if domainID == nil {
		return nil
	}
	catalog, err := s.reference.Catalog()
	if err != nil {
		return err
	}
	if _, ok := catalog.Domain(*domainID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "domain not found")
	}
	return nil
}

func (s *InterventionService) parseFollowUp(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "follow_up_date must be YYYY-MM-DD")
	}
	if date.Before(dateOf(s.now())) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "follow_up_date cannot be in the past")
	}
	return &date, nil
}
