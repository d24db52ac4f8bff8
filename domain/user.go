package domain

// User is the identity read model consumed by the messaging subsystem.
// Owned by the identity collaborator; never mutated here.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
