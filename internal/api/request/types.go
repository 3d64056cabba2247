package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StartRequest is the request body for starting a match. An empty letter
// lets the server pick one.
type StartRequest struct {
	Letter string `json:"letter,omitempty"`
}

// DirectionRequest is the request body for choosing a side
type DirectionRequest struct {
	Direction string `json:"direction"`
}

// MoveRequest is the request body for submitting a letter and word
type MoveRequest struct {
	Letter string `json:"letter"`
	Word   string `json:"word"`
}
