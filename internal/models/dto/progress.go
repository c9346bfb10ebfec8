package dto

type LessonCompletionRequest struct {
	Score int `json:"score"`
}

type LessonCompletedResponse struct {
	LessonID  string `json:"lessonId"`
	Completed bool   `json:"completed"`
}
