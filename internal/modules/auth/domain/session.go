package domain

// Session is the locally persisted credential set. Tokens are both present
// or both absent.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       int    `json:"user_id"`
	IsAdmin      bool   `json:"is_admin"`
}

// Complete reports whether both tokens are present.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

type RegistrationProfile struct {
	RUT      string `json:"rut" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"nombre" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"numero_telefonico_movil,omitempty" validate:"omitempty,digits,max=9"`
}
