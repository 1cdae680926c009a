package model

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
