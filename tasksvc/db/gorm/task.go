package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	stdgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (r *taskRepository) Find(ctx context.Context, id uint64) (*tasksvc.Task, error) {
	var task tasksvc.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, stdgorm.ErrRecordNotFound) {
			return nil, tasksvc.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context) ([]*tasksvc.Task, error) {
	var tasks []*tasksvc.Task
	if err := r.db.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByUser(ctx context.Context, userID uint64) ([]*tasksvc.Task, error) {
	var tasks []*tasksvc.Task
	if err := r.db.WithContext(ctx).Where("assigned_user_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByStatus(ctx context.Context, status tasksvc.Status) ([]*tasksvc.Task, error) {
	var tasks []*tasksvc.Task
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindOverdue(ctx context.Context, now time.Time) ([]*tasksvc.Task, error) {
	var tasks []*tasksvc.Task
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", now, tasksvc.StatusCompleted).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tasksvc.Task{}).
		Where("assigned_user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) Create(ctx context.Context, task *tasksvc.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update writes every column, including cleared ones; a struct-based Updates
// would skip zero values and could never persist an unassignment.
func (r *taskRepository) Update(ctx context.Context, task *tasksvc.Task) error {
	res := r.db.WithContext(ctx).Save(task)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, task *tasksvc.Task) error {
	res := r.db.WithContext(ctx).Delete(&tasksvc.Task{}, task.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Transact(ctx context.Context, fn func(tasksvc.TaskRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *stdgorm.DB) error {
		return fn(&taskRepository{tx})
	})
}
