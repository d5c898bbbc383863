package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gaoexevents/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	loc            *time.Location
	now            func() time.Time
	contextTimeout time.Duration
}

// NewRegistrationService creates a RegistrationService. loc is the time zone
// used for date-eligibility comparison; all callers share the one configured
// zone so behavior near midnight does not depend on the client device.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	loc *time.Location,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		loc:            loc,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *registrationService) CheckEligibility(event *domain.Event, asOf time.Time) error {
	return domain.CheckEligibility(event.Date, asOf, s.loc)
}

func (s *registrationService) Register(ctx context.Context, userID, eventID, name, phone string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := domain.ValidateContact(name, phone); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.CheckEligibility(event, s.now()); err != nil {
		return nil, err
	}

	// Friendly pre-check. The Put below is still conditional at the store, so
	// two near-simultaneous registrations for the same key cannot both create.
	if _, err := s.regRepo.Get(ctx, userID, eventID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	reg := domain.NewRegistration(userID, event, strings.TrimSpace(name), phone, s.now())
	created, err := s.regRepo.Put(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	if !created {
		return nil, domain.ErrAlreadyRegistered
	}

	s.sendConfirmation(ctx, reg)

	return reg, nil
}

// sendConfirmation is best effort: a mail failure never fails the registration.
func (s *registrationService) sendConfirmation(ctx context.Context, reg *domain.Registration) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, reg.UserID)
	if err != nil || user.Email == "" {
		s.logger.WarnContext(ctx, "skipping confirmation email, user lookup failed",
			"user_id", reg.UserID, "err", err)
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:      user.Email,
		Name:       reg.Name,
		EventTitle: reg.Title,
		EventDate:  reg.Date.In(s.loc).Format("Monday, January 2, 2006"),
		TimeRange:  reg.TimeRange,
		Location:   reg.Location,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration confirmation email failed",
			"event_id", reg.EventID, "err", err)
	}
}

func (s *registrationService) ListRegistrations(ctx context.Context, userID string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	regs, err := s.regRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (s *registrationService) RemoveRegistration(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.regRepo.Delete(ctx, userID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *registrationService) WatchRegistrations(ctx context.Context, userID string) (<-chan []*domain.Registration, func(), error) {
	if userID == "" {
		return nil, nil, domain.ErrUnauthenticated
	}
	return s.regRepo.WatchByUser(ctx, userID)
}
