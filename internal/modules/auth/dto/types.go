package dto

type LoginInput struct {
	Identifier string
	Secret     string
}

// SessionOutput is what other modules see of the stored session.
type SessionOutput struct {
	AccessToken string
	UserID      int
	IsAdmin     bool
}

type RegisterInput struct {
	RUT      string
	Password string
	Name     string
	Email    string
	Phone    string
}

type RegisterOutput struct {
	UserID int
	RUT    string
}
