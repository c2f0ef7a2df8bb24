package models

// Account is the public view of a registered user. It never carries the
// credential.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// StoredAccount is the persisted form of an Account, as kept under the
// users key. Password holds a bcrypt hash for accounts created by this
// program, or clear text for records written by older clients.
type StoredAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Public strips the credential.
func (a StoredAccount) Public() Account {
	return Account{ID: a.ID, Username: a.Username}
}

// Session is the persisted "currently signed in" identity.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (s Session) Account() Account {
	return Account{ID: s.ID, Username: s.Username}
}
