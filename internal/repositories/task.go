package repositories

import (
	"context"

	"example.com/backstage/services/picking/internal/models"

	"gorm.io/gorm"
)

// TaskRepository persists task types and task logs
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	CreateType(ctx context.Context, taskType *models.TaskType) error
	UpdateType(ctx context.Context, id string, updates map[string]interface{}) error
	GetType(ctx context.Context, id string) (*models.TaskType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]models.TaskType, error)
	DeleteType(ctx context.Context, id string) error
	CreateLog(ctx context.Context, entry *models.TaskLog) error
	ListLogs(ctx context.Context, uid string, limit int) ([]models.TaskLog, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

func (r *taskRepository) CreateType(ctx context.Context, taskType *models.TaskType) error {
	return translate(r.db.WithContext(ctx).Create(taskType).Error, "failed to create task type")
}

func (r *taskRepository) UpdateType(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.TaskType{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "failed to update task type")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) GetType(ctx context.Context, id string) (*models.TaskType, error) {
	var taskType models.TaskType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&taskType).Error; err != nil {
		return nil, translate(err, "failed to get task type")
	}
	return &taskType, nil
}

func (r *taskRepository) ListTypes(ctx context.Context, activeOnly bool) ([]models.TaskType, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var types []models.TaskType
	if err := q.Find(&types).Error; err != nil {
		return nil, translate(err, "failed to list task types")
	}
	return types, nil
}

func (r *taskRepository) DeleteType(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TaskType{})
	if res.Error != nil {
		return translate(res.Error, "failed to delete task type")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) CreateLog(ctx context.Context, entry *models.TaskLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error, "failed to create task log")
}

func (r *taskRepository) ListLogs(ctx context.Context, uid string, limit int) ([]models.TaskLog, error) {
	q := r.db.WithContext(ctx).Where("uid = ?", uid).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.TaskLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, translate(err, "failed to list task logs")
	}
	return logs, nil
}
