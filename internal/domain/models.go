package domain

import (
	"math"
	"time"
)

// Level classifies module difficulty.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ContentKind identifies how a lesson is delivered.
type ContentKind string

const (
	ContentVideo ContentKind = "video"
	ContentAR    ContentKind = "ar"
	ContentPDF   ContentKind = "pdf"
)

// Module is a top-level instructional unit. Modules are owned by the backing
// store; the service only reads them.
type Module struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Level        Level     `json:"level"`
	Description  string    `json:"description"`
	Premium      bool      `json:"premium"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	LessonsCount int       `json:"lessonsCount"`
	Duration     string    `json:"duration"`
	Rating       float64   `json:"rating"`
	Students     int       `json:"students"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Lesson is an ordered content unit within a module. OrderIndex defines the
// display and progression order; ties are undefined.
type Lesson struct {
	ID          string      `json:"id"`
	ModuleID    string      `json:"moduleId"`
	Title       string      `json:"title"`
	ContentKind ContentKind `json:"contentKind"`
	ContentURL  string      `json:"contentUrl,omitempty"`
	OrderIndex  int         `json:"orderIndex"`
	Duration    string      `json:"duration"`
}

// QuizQuestion is an MCQ question. CorrectAnswer indexes Options.
type QuizQuestion struct {
	ID            string   `json:"id"`
	ModuleID      string   `json:"moduleId"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// LessonProgress records the fact that a user completed a lesson. At most one
// record exists per (user, lesson) pair.
type LessonProgress struct {
	UserID      string    `json:"userId"`
	LessonID    string    `json:"lessonId"`
	ModuleID    string    `json:"moduleId"`
	CompletedAt time.Time `json:"completedAt"`
}

// ModuleProgress is the stored per-(user, module) aggregate. It is persisted
// independently of the lesson-completion count and is not reconciled with it.
type ModuleProgress struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	ModuleID             string    `json:"moduleId"`
	CompletionPercentage int       `json:"completionPercentage"`
	Score                int       `json:"score"`
	CreatedAt            time.Time `json:"createdAt"`
}

// User is an account row. PasswordHash is a bcrypt hash, never the password.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Premium      bool      `json:"premium"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FeedEventType enumerates row-level changes carried by the live feed.
type FeedEventType string

const (
	FeedInsert FeedEventType = "insert"
	FeedDelete FeedEventType = "delete"
	FeedUpdate FeedEventType = "update"
)

// ProgressEvent is one row-level change on the lesson-progress collection.
type ProgressEvent struct {
	Type   FeedEventType  `json:"event"`
	Record LessonProgress `json:"record"`
}

// ProgressSnapshot is a point-in-time view of a user's completed lessons
// within one module.
type ProgressSnapshot struct {
	ModuleID  string    `json:"moduleId"`
	Completed []string  `json:"completed"`
	Percent   int       `json:"percent"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompletionPercent derives the rounded completion percentage. Zero total
// lessons yields 0; callers fall back to the stored ModuleProgress value.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
