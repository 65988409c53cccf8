package model

import "time"

type UserStatus int

const (
	UserStatusDisabled UserStatus = 0
	UserStatusActive   UserStatus = 1
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"

	// AuthorityPrefix is prepended to role codes to build authority strings.
	AuthorityPrefix = "ROLE_"
)

type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	Nickname      string     `json:"nickname"`
	PasswordHash  string     `json:"-"`
	Status        UserStatus `json:"status"`
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP   *string    `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked reports whether the lockout window is still open at now.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

func (u User) View() UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		Nickname:    u.Nickname,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type UserView struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Nickname    string     `json:"nickname"`
	Status      UserStatus `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UserProfile struct {
	UserView
	Role  string   `json:"role"`
	Roles []string `json:"roles"`
}

type TokenClaims struct {
	Username string `json:"sub"`
	UserID   int64  `json:"userId"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// Principal is the authenticated identity attached to a single request.
type Principal struct {
	User        User     `json:"user"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities"`
}

func (p *Principal) HasRole(code string) bool {
	if p == nil {
		return false
	}
	return p.HasAuthority(AuthorityPrefix + code)
}

func (p *Principal) HasAuthority(authority string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

type MenuItem struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
