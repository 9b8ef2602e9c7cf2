package model

import "time"

// Session is the active-user record. At most one exists at a time: every
// login or signup overwrites the previous one.
//
// WHY NO PASSWORD HERE?
// The session only says who is signed in and since when. Credentials live on
// the Account record (and login never checks them anyway).
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LoginTime time.Time `json:"loginTime"`
	Remember  bool      `json:"remember"`
}

// Account is a signup record, kept in its own collection apart from the
// active session.
//
// Password holds the plaintext the user typed unless password hashing was
// switched on in the server config, in which case it holds a bcrypt hash.
// The plaintext default is deliberately insecure demo behaviour.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}
