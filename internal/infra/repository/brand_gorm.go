package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

type brandGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewBrandGormRepository(db *gorm.DB) repo.BrandRepository {
	return &brandGormRepository{db: db}
}

// ブランドを名前順に全件返す。
func (r *brandGormRepository) List(ctx context.Context) ([]model.Brand, error) {
	var brands []model.Brand
	if err := r.db.WithContext(ctx).Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandGormRepository) FindByID(ctx context.Context, id int64) (model.Brand, error) {
	var b model.Brand
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Brand{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

func (r *brandGormRepository) FindByName(ctx context.Context, name string) (model.Brand, error) {
	var b model.Brand
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Brand{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

// 名前重複はErrDuplicate。
func (r *brandGormRepository) Create(ctx context.Context, b model.Brand) (model.Brand, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Brand{}, repo.ErrDuplicate
		}
		return model.Brand{}, err
	}
	return b, nil
}

func (r *brandGormRepository) Update(ctx context.Context, b model.Brand) error {
	res := r.db.WithContext(ctx).Model(&model.Brand{}).Where("id = ?", b.ID).Update("name", b.Name)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return repo.ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *brandGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Brand{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
