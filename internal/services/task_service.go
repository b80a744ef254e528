package services

import (
	"context"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/repositories"
	"example.com/backstage/services/picking/internal/scoring"
	"example.com/backstage/services/picking/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TaskTypeInput creates or replaces a task type
type TaskTypeInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	XP     int    `json:"xp" validate:"min=0"`
	Active *bool  `json:"active,omitempty"`
}

// LogTaskInput records work done on a task type
type LogTaskInput struct {
	TaskTypeID string `json:"taskTypeId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
	Note       string `json:"note,omitempty" validate:"max=1024"`
}

// TaskService manages task types and credits XP for logged tasks
type TaskService struct {
	db      *gorm.DB
	tasks   repositories.TaskRepository
	events  repositories.EventRepository
	users   *UserService
	metrics *metrics.Metrics
	clock   Clock
}

// NewTaskService creates a new task service
func NewTaskService(db *gorm.DB, users *UserService, m *metrics.Metrics, clock Clock) *TaskService {
	return &TaskService{
		db:      db,
		tasks:   repositories.NewTaskRepository(db),
		events:  repositories.NewEventRepository(db),
		users:   users,
		metrics: m,
		clock:   clock,
	}
}

func (s *TaskService) CreateTaskType(ctx context.Context, in TaskTypeInput) (*models.TaskType, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	taskType := &models.TaskType{
		ID:     uuid.New().String(),
		Name:   in.Name,
		XP:     in.XP,
		Active: in.Active == nil || *in.Active,
	}
	if err := s.tasks.CreateType(ctx, taskType); err != nil {
		return nil, err
	}
	log.Info().Str("task_type_id", taskType.ID).Str("name", taskType.Name).Int("xp", taskType.XP).Msg("Task type created")
	return taskType, nil
}

func (s *TaskService) UpdateTaskType(ctx context.Context, id string, in TaskTypeInput) (*models.TaskType, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"name": in.Name, "xp": in.XP}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if err := s.tasks.UpdateType(ctx, id, updates); err != nil {
		return nil, notFound(err, "task type %s not found", id)
	}
	return s.GetTaskType(ctx, id)
}

func (s *TaskService) GetTaskType(ctx context.Context, id string) (*models.TaskType, error) {
	taskType, err := s.tasks.GetType(ctx, id)
	if err != nil {
		return nil, notFound(err, "task type %s not found", id)
	}
	return taskType, nil
}

func (s *TaskService) ListTaskTypes(ctx context.Context, activeOnly bool) ([]models.TaskType, error) {
	return s.tasks.ListTypes(ctx, activeOnly)
}

func (s *TaskService) DeleteTaskType(ctx context.Context, id string) error {
	if err := s.tasks.DeleteType(ctx, id); err != nil {
		return notFound(err, "task type %s not found", id)
	}
	log.Info().Str("task_type_id", id).Msg("Task type deleted")
	return nil
}

// LogTask records quantity units of an active task type for actor and credits
// taskTypeXP * quantity
func (s *TaskService) LogTask(ctx context.Context, actor domain.Identity, in LogTaskInput) (*models.TaskLog, error) {
	if actor.UID == "" {
		return nil, domain.Validationf("user uid is required")
	}
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}

	taskType, err := s.GetTaskType(ctx, in.TaskTypeID)
	if err != nil {
		return nil, err
	}
	if !taskType.Active {
		return nil, domain.InvalidStatef("task type %s is inactive", taskType.Name)
	}

	now := s.clock.Now()
	entry := &models.TaskLog{
		ID:         uuid.New().String(),
		UID:        actor.UID,
		UserName:   actor.Name,
		TaskTypeID: taskType.ID,
		TaskName:   taskType.Name,
		Quantity:   in.Quantity,
		XPEarned:   scoring.ComputeTaskXP(taskType.XP, in.Quantity),
		Note:       in.Note,
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tasks.WithTx(tx).CreateLog(ctx, entry); err != nil {
			return err
		}
		return s.events.WithTx(tx).Append(ctx, models.AggregateTaskLog, entry.ID, EventTaskLogged, actor.UID, map[string]interface{}{
			"taskTypeId": entry.TaskTypeID,
			"quantity":   entry.Quantity,
			"xp":         entry.XPEarned,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	s.users.awardAll(ctx, "task:"+entry.ID, []XPAward{{UID: actor.UID, Name: actor.Name, Role: "task", XP: entry.XPEarned}})
	s.metrics.IncrementCounter(metrics.CounterTasksLogged)

	log.Info().
		Str("uid", actor.UID).
		Str("task", taskType.Name).
		Int("quantity", entry.Quantity).
		Int("xp", entry.XPEarned).
		Msg("Task logged")
	return entry, nil
}

func (s *TaskService) ListTaskLogs(ctx context.Context, uid string, limit int) ([]models.TaskLog, error) {
	return s.tasks.ListLogs(ctx, uid, limit)
}
