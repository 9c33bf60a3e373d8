package models

import "time"

// User is the local row mirroring a provider account. The identity provider
// owns credentials and email; this table owns game stats and login metadata.
type User struct {
	ID        string     `db:"id"`
	Username  string     `db:"username"`
	Confirmed bool       `db:"confirmed"`
	CreatedAt time.Time  `db:"created_at"`
	LastLogin *time.Time `db:"last_login"`
}

// AccountStatus is the provider-side confirmation state of an account.
type AccountStatus string

const (
	AccountStatusUnconfirmed AccountStatus = "UNCONFIRMED"
	AccountStatusConfirmed   AccountStatus = "CONFIRMED"
)

// Account is the provider-owned identity referenced by this system. Username
// doubles as the canonical account id in the user pool.
type Account struct {
	Username string
	Email    string
	Status   AccountStatus
}

// TokenSet is the session material issued by the provider on a successful
// password check.
type TokenSet struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32 // access token lifetime in seconds
}
