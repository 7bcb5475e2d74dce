package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/adapter"
	"github.com/drivehub/service-booking/internal/domain/reservation"
	"github.com/drivehub/service-booking/internal/events"
	"github.com/drivehub/service-booking/internal/kafka"
)

// SagaStep represents a single step in a saga with execute and compensate actions.
type SagaStep struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga orchestrates a sequence of steps with compensating transactions on failure.
type Saga struct {
	name   string
	steps  []SagaStep
	logger *zap.Logger
}

// NewSaga creates a new saga orchestrator.
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{
		name:   name,
		steps:  make([]SagaStep, 0),
		logger: logger,
	}
}

// AddStep appends a step to the saga.
func (s *Saga) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
}

// Execute runs all saga steps in order. On failure, it compensates executed steps in reverse order.
func (s *Saga) Execute(ctx context.Context) error {
	s.logger.Info("saga started", zap.String("saga", s.name))

	executedSteps := make([]SagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		s.logger.Info("executing saga step",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
		)

		if err := step.Execute(ctx); err != nil {
			s.logger.Error("saga step failed, starting compensation",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)

			// Compensate executed steps in reverse order
			for i := len(executedSteps) - 1; i >= 0; i-- {
				compensateStep := executedSteps[i]
				if compensateStep.Compensate != nil {
					s.logger.Info("compensating saga step",
						zap.String("saga", s.name),
						zap.String("step", compensateStep.Name),
					)
					if compErr := compensateStep.Compensate(ctx); compErr != nil {
						s.logger.Error("compensation failed",
							zap.String("saga", s.name),
							zap.String("step", compensateStep.Name),
							zap.Error(compErr),
						)
					}
				}
			}

			return fmt.Errorf("saga '%s' failed at step '%s': %w", s.name, step.Name, err)
		}

		executedSteps = append(executedSteps, step)
	}

	s.logger.Info("saga completed successfully", zap.String("saga", s.name))
	return nil
}

// EventPublisher abstracts the Kafka producer for outbound events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// BookingSagaService orchestrates reservation creation across the database,
// the payment provider and the event bus.
type BookingSagaService struct {
	repo     reservation.Repository
	tx       reservation.TxRunner
	provider adapter.PaymentProvider
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingSagaService creates a new BookingSagaService.
func NewBookingSagaService(
	repo reservation.Repository,
	tx reservation.TxRunner,
	provider adapter.PaymentProvider,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingSagaService {
	return &BookingSagaService{
		repo:     repo,
		tx:       tx,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// CreateReservationSaga persists the reservation, opens a checkout session
// for the amount due at booking time, and publishes the created event.
// persist runs the serializable booking transaction built by the caller;
// created returns the reservation it produced, so it must only be called
// after persist has run. If the checkout session cannot be opened the
// reservation is cancelled and its availability block released; a failure to
// publish the created event is logged and never rolls the booking back.
func (s *BookingSagaService) CreateReservationSaga(
	ctx context.Context,
	persist func(ctx context.Context) error,
	created func() *reservation.Reservation,
	currency string,
) (adapter.CheckoutSession, error) {
	var session adapter.CheckoutSession

	sg := NewSaga("create_reservation", s.logger)

	// Step 1: Run the booking transaction
	sg.AddStep(SagaStep{
		Name:    "persist_reservation",
		Execute: persist,
		Compensate: func(ctx context.Context) error {
			r := created()
			return s.tx.RunSerializable(ctx, func(ctx context.Context) error {
				if err := r.Cancel(); err != nil {
					return err
				}
				r.IncrementVersion()
				if err := s.repo.Update(ctx, r); err != nil {
					return err
				}
				return s.repo.ReleaseBlock(ctx, r.ID())
			})
		},
	})

	// Step 2: Open a checkout session for the deposit or full amount
	sg.AddStep(SagaStep{
		Name: "create_checkout_session",
		Execute: func(ctx context.Context) error {
			r := created()
			amount := r.DepositCents()
			if amount <= 0 {
				amount = r.Breakdown().TotalCents
			}
			var err error
			session, err = s.provider.CreateCheckout(ctx, r.ID(), amount, currency, r.Customer().Email)
			return err
		},
		Compensate: func(ctx context.Context) error {
			if session.SessionID != "" {
				return s.provider.CancelCheckout(ctx, session.SessionID)
			}
			return nil
		},
	})

	// Step 3: Publish ReservationCreated. Notification is fire-and-forget:
	// a publish failure must not cancel a reservation the customer now holds,
	// so the error is logged and the step reports success.
	sg.AddStep(SagaStep{
		Name: "publish_reservation_created",
		Execute: func(ctx context.Context) error {
			if err := s.PublishReservationEvent(ctx, events.ReservationCreated, created()); err != nil {
				s.logger.Error("failed to publish created event",
					zap.String("reservation_id", created().ID().String()),
					zap.Error(err),
				)
			}
			return nil
		},
		Compensate: nil, // Event publishing has no compensating action
	})

	if err := sg.Execute(ctx); err != nil {
		return adapter.CheckoutSession{}, err
	}

	return session, nil
}

// PublishReservationEvent emits a reservation lifecycle event on the booking topic.
func (s *BookingSagaService) PublishReservationEvent(ctx context.Context, eventType string, r *reservation.Reservation) error {
	event := events.ReservationEvent{
		ReservationID: r.ID(),
		BookingNumber: r.Number(),
		TenantID:      r.TenantID(),
		VehicleID:     r.VehicleID(),
		Status:        string(r.Status()),
		TotalCents:    r.Breakdown().TotalCents,
		CustomerEmail: r.Customer().Email,
		OccurredAt:    time.Now().UTC(),
	}
	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, event)
	if err != nil {
		return fmt.Errorf("failed to create cloud event: %w", err)
	}
	return s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent)
}

