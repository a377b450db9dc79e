package models

import (
	"time"

	"gorm.io/gorm"
)

type Schedule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StudentID string    `json:"student_id" gorm:"not null;size:255;index"`
	CourseID  uint      `json:"course_id" gorm:"not null;index"`
	ClassAt   time.Time `json:"class_at" gorm:"not null;index"`
	Teacher   string    `json:"teacher" gorm:"size:100" validate:"omitempty,max=100"`
	Platform  string    `json:"platform" gorm:"size:50" validate:"omitempty,max=50"`
	MeetingURL string   `json:"meeting_url" gorm:"size:500" validate:"omitempty,url,max=500"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Student User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Schedule) TableName() string {
	return "schedules"
}
