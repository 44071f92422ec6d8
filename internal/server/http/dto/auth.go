package dto

// SessionRequest carries the frontend API key and the user it acts for.
type SessionRequest struct {
	UserID int64  `json:"user_id"`
	APIKey string `json:"api_key"`
}
