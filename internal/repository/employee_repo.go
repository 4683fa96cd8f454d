package repository

import (
	"context"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	FindByUsername(ctx context.Context, username string) (*model.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
}

type employeeRepo struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository { return &employeeRepo{db: db} }

// Create links the employee to existing stations without upserting them.
func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	return Conn(ctx, r.db).Omit("Stations.*").Create(e).Error
}

func (r *employeeRepo) FindByUsername(ctx context.Context, username string) (*model.Employee, error) {
	var e model.Employee
	// Accept login by username OR email
	err := Conn(ctx, r.db).
		Preload("Stations").
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND active = ?", username, username, true).
		First(&e).Error
	return &e, err
}

func (r *employeeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	err := Conn(ctx, r.db).Preload("Stations").First(&e, "id = ?", id).Error
	return &e, err
}
