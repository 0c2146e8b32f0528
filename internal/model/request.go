package model

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,bcryptmax"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	FullName string `json:"fullname" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=4,bcryptmax"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Avatar   string `json:"avatar" validate:"max=255"`
	Position string `json:"position" validate:"max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20,numeric"`
	Role     string `json:"role" validate:"required"`
}

// UpdateUserRequest replaces the profile fields; an empty password
// leaves the stored hash untouched.
type UpdateUserRequest struct {
	FullName string `json:"fullname" validate:"required,max=100"`
	Password string `json:"password" validate:"omitempty,min=4,bcryptmax"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Avatar   string `json:"avatar" validate:"max=255"`
	Position string `json:"position" validate:"max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20,numeric"`
	Role     string `json:"role" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"bcryptmax"`
	NewPassword     string `json:"newPassword" validate:"required,min=4,bcryptmax"`
}

type SurveyRequest struct {
	Name      string            `json:"name" validate:"required,max=255"`
	Type      string            `json:"type" validate:"required,oneof=ASSIST CRAFFT CUSTOM"`
	Questions []QuestionRequest `json:"questions" validate:"dive"`
}

type QuestionRequest struct {
	Content string          `json:"content" validate:"required"`
	Answers []AnswerRequest `json:"answers" validate:"dive"`
}

type AnswerRequest struct {
	Content string `json:"content" validate:"required"`
	Correct bool   `json:"correct"`
	Score   int    `json:"score" validate:"gte=0"`
}

type ProgramRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Image       string `json:"image" validate:"max=255"`
	Address     string `json:"address" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Status      string `json:"status" validate:"omitempty,oneof=UPCOMING ONGOING FINISHED CANCELLED"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	Description string `json:"description"`
}
