package postgres

import (
	"context"
	"fmt"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// AppointmentStore implements ports.AppointmentStore
type AppointmentStore struct{}

// NewAppointmentStore creates a new appointment store
func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{}
}

const getAppointmentQuery = `
SELECT id, status, end_at
FROM appointments
WHERE id = $1`

// GetByID retrieves an appointment linked to an invoice
func (s *AppointmentStore) GetByID(ctx context.Context, db ports.DBTX, id int64) (*models.Appointment, error) {
	var appt models.Appointment
	err := db.QueryRow(ctx, getAppointmentQuery, id).Scan(&appt.ID, &appt.Status, &appt.EndAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewDomainError(domain.ErrorCodeInternalError, "appointment not found").
				WithDetail("appointment_id", id)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

const markAppointmentCompletedQuery = `
UPDATE appointments
SET status = 'completed'
WHERE id = $1 AND status <> 'completed'`

// MarkCompleted transitions the appointment to completed. Already-completed
// rows are left untouched.
func (s *AppointmentStore) MarkCompleted(ctx context.Context, db ports.DBTX, id int64) error {
	_, err := db.Exec(ctx, markAppointmentCompletedQuery, id)
	if err != nil {
		return fmt.Errorf("mark appointment completed: %w", err)
	}
	return nil
}
