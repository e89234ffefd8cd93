package store

import (
	"context"
	"errors"

	"github.com/appcloud-project/decision-service/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInstanceNotFound = errors.New("service instance not found")
)

// ServiceInstanceFilter contains optional fields for filtering instance queries.
// nil fields are ignored (not filtered).
type ServiceInstanceFilter struct {
	InstallID  *string
	Configured *bool
}

// Pagination contains options for paginated queries.
type Pagination struct {
	Limit  int
	Offset int
}

type ServiceInstance interface {
	List(ctx context.Context, filter *ServiceInstanceFilter, pagination *Pagination) (model.ServiceInstanceList, error)
	Create(ctx context.Context, instance model.ServiceInstance) (*model.ServiceInstance, error)
	Update(ctx context.Context, instance model.ServiceInstance) (*model.ServiceInstance, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.ServiceInstance, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceInstanceStore struct {
	db *gorm.DB
}

var _ ServiceInstance = (*ServiceInstanceStore)(nil)

func NewServiceInstance(db *gorm.DB) ServiceInstance {
	return &ServiceInstanceStore{db: db}
}

func (s *ServiceInstanceStore) List(ctx context.Context, filter *ServiceInstanceFilter, pagination *Pagination) (model.ServiceInstanceList, error) {
	var instances model.ServiceInstanceList
	query := s.db.WithContext(ctx)

	if filter != nil {
		if filter.InstallID != nil {
			query = query.Where(&model.ServiceInstance{InstallID: *filter.InstallID})
		}
		if filter.Configured != nil {
			query = query.Where("configured = ?", *filter.Configured)
		}
	}

	// Apply consistent ordering for pagination
	query = query.Order("create_time ASC, id ASC")

	if pagination != nil {
		query = query.Limit(pagination.Limit).Offset(pagination.Offset)
	}

	if err := query.Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}

func (s *ServiceInstanceStore) Create(ctx context.Context, instance model.ServiceInstance) (*model.ServiceInstance, error) {
	if err := s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *ServiceInstanceStore) Update(ctx context.Context, instance model.ServiceInstance) (*model.ServiceInstance, error) {
	result := s.db.WithContext(ctx).Model(&instance).Clauses(clause.Returning{}).
		Select("install_id", "asset_name", "configured", "record_definition", "settings", "update_time").
		Updates(&instance)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInstanceNotFound
	}
	return &instance, nil
}

func (s *ServiceInstanceStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&model.ServiceInstance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInstanceNotFound
	}
	return nil
}

func (s *ServiceInstanceStore) Get(ctx context.Context, id uuid.UUID) (*model.ServiceInstance, error) {
	var instance model.ServiceInstance
	if err := s.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return &instance, nil
}

func (s *ServiceInstanceStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var instance model.ServiceInstance
	err := s.db.WithContext(ctx).Select("id").Where(&model.ServiceInstance{ID: id}).Take(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
