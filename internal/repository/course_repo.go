package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// CourseRepository defines persistence operations for courses and their rosters.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error)
	Upsert(ctx context.Context, course *models.Course) error
	ReplaceStudents(ctx context.Context, course *models.Course, students []models.User) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Students").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("course_students").
		Where("course_id = ? AND user_id = ?", courseID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepository) Upsert(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "teacher_id", "updated_at"}),
		}).
		Create(course).Error; err != nil {
		return err
	}

	var stored models.Course
	if err := r.db.WithContext(ctx).Where("code = ?", course.Code).First(&stored).Error; err != nil {
		return err
	}
	*course = stored
	return nil
}

func (r *courseRepository) ReplaceStudents(ctx context.Context, course *models.Course, students []models.User) error {
	return r.db.WithContext(ctx).Model(course).Association("Students").Replace(students)
}
