package repository

import (
	"context"
	"time"

	"koinonia/internal/models"

	"gorm.io/gorm"
)

// RadioRepository defines the interface for radio schedule data operations
type RadioRepository interface {
	Create(ctx context.Context, program *models.RadioProgram) error
	List(ctx context.Context) ([]*models.RadioProgram, error)
	ListByWeekday(ctx context.Context, weekday time.Weekday) ([]*models.RadioProgram, error)
	Update(ctx context.Context, program *models.RadioProgram) error
	Delete(ctx context.Context, id uint) error
}

type radioRepository struct {
	db *gorm.DB
}

// NewRadioRepository creates a new radio schedule repository
func NewRadioRepository(db *gorm.DB) RadioRepository {
	return &radioRepository{db: db}
}

func (r *radioRepository) Create(ctx context.Context, program *models.RadioProgram) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *radioRepository) List(ctx context.Context) ([]*models.RadioProgram, error) {
	var programs []*models.RadioProgram
	err := r.db.WithContext(ctx).
		Order("weekday ASC, start_time ASC").
		Find(&programs).Error
	if err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *radioRepository) ListByWeekday(ctx context.Context, weekday time.Weekday) ([]*models.RadioProgram, error) {
	var programs []*models.RadioProgram
	err := r.db.WithContext(ctx).
		Where("weekday = ?", int(weekday)).
		Order("start_time ASC").
		Find(&programs).Error
	if err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *radioRepository) Update(ctx context.Context, program *models.RadioProgram) error {
	return r.db.WithContext(ctx).Save(program).Error
}

func (r *radioRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.RadioProgram{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
