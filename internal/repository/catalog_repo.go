package repository

import (
	"context"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository resolves the reference records shift lines point at.
type CatalogRepository interface {
	FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)
	FindEmployees(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Employee, error)
	FindPartners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Partner, error)
	AddEmployeeVariances(ctx context.Context, rows []model.EmployeeVariance) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	out := make(map[uuid.UUID]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.Product
	if err := Conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *catalogRepo) FindEmployees(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Employee, error) {
	out := make(map[uuid.UUID]model.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.Employee
	if err := Conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, e := range rows {
		out[e.ID] = e
	}
	return out, nil
}

func (r *catalogRepo) FindPartners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Partner, error) {
	out := make(map[uuid.UUID]model.Partner, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.Partner
	if err := Conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *catalogRepo) AddEmployeeVariances(ctx context.Context, rows []model.EmployeeVariance) error {
	if len(rows) == 0 {
		return nil
	}
	return Conn(ctx, r.db).Create(&rows).Error
}
