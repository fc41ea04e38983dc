package models

// User is the profile returned by the backend for the logged-in account.
type User struct {
	ID    int    `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
}

// Message is the generic {"message": "..."} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
