package dto

type LessonAnswerRequest struct {
	QuestionText   string `json:"questionText"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

type ReflectionRequest struct {
	ReflectionType string `json:"reflectionType"`
	QuestionText   string `json:"questionText"`
	UserResponse   string `json:"userResponse"`
	AIFeedback     string `json:"aiFeedback"`
}

type ChatMessageRequest struct {
	Message     string `json:"message"`
	Role        string `json:"role"`
	ContextType string `json:"contextType"`
}

type ChatHistoryClearedResponse struct {
	Deleted int64 `json:"deleted"`
}
