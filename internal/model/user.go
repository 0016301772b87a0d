package model

import "time"

// User represents a staff account as stored in the `users` table.  The
// password hash never leaves the server; handlers respond with UserView.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    Name         string    // users.name
    PasswordHash string    // users.password_hash (bcrypt)
    Role         string    // users.role (STAFF, MANAGER, ADMIN)
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// UserView is the public projection of a user.
type UserView struct {
    ID    string `json:"id"`
    Email string `json:"email"`
    Name  string `json:"name"`
    Role  string `json:"role"`
}

// View strips credentials from u.
func (u User) View() UserView {
    return UserView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
