package models

// Request bodies. Field names follow the JSON the web client already sends,
// which mixes snake_case and camelCase between endpoints.

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code"`
	Name       string `json:"name"`
	Topic      string `json:"topic,omitempty"`
}

type SubmitTopicRequest struct {
	GroupID       string `json:"group_id"`
	MemberID      string `json:"member_id"`
	TopicText     string `json:"topic_text"`
	RotationCycle int    `json:"rotation_cycle"`
}

type SaveRotationRequest struct {
	GroupID        string                 `json:"group_id"`
	RotationNumber int                    `json:"rotation_number"`
	Assignments    map[string]interface{} `json:"assignments"`
}

type SubmitArticleRequest struct {
	GroupID        string `json:"group_id"`
	MemberID       string `json:"member_id"`
	RotationNumber int    `json:"rotation_number"`
	Content        string `json:"content"`
}

type SaveQuizRequest struct {
	ArticleID string         `json:"articleId"`
	Questions []QuizQuestion `json:"questions"`
}

type SaveAttemptRequest struct {
	QuizID   string `json:"quizId"`
	MemberID string `json:"memberId"`
	Answers  []int  `json:"answers"`
	Score    *int   `json:"score,omitempty"`
}

type DemoTimeRequest struct {
	GroupID   string  `json:"groupId"`
	SkipHours float64 `json:"skipHours,omitempty"`
	SkipDays  float64 `json:"skipDays,omitempty"`
	Reset     bool    `json:"reset,omitempty"`
}

type GenerateQuizRequest struct {
	ArticleContent string `json:"articleContent"`
	NumQuestions   int    `json:"numQuestions,omitempty"`
	UseAI          *bool  `json:"useAI,omitempty"`
}
