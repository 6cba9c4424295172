package board

import "github.com/TWRT/join-board/internal/models"

type BoardError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type UserAccount struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserRecord is the /auth/users shape: the profile wraps the auth account.
type UserRecord struct {
	ID    models.ID   `json:"id"`
	User  UserAccount `json:"user"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Color string      `json:"color"`
}

func (u UserRecord) Person() models.Person {
	name := u.User.Username
	if name == "" {
		name = u.Name
	}
	email := u.User.Email
	if email == "" {
		email = u.Email
	}
	return models.Person{
		ID:    u.ID,
		Kind:  models.KindUser,
		Name:  name,
		Email: email,
		Color: u.Color,
	}
}

type GuestRecord struct {
	ID    models.ID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Color string    `json:"color"`
}

func (g GuestRecord) Person() models.Person {
	return models.Person{
		ID:    g.ID,
		Kind:  models.KindGuest,
		Name:  g.Name,
		Email: g.Email,
		Color: g.Color,
	}
}

type CreateTaskRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Date           string          `json:"date,omitempty"`
	Category       models.Category `json:"category"`
	Priority       models.Priority `json:"priority,omitempty"`
	AssignedUser   *models.ID      `json:"assigned_user"`
	AssignedGuests []models.ID     `json:"assigned_guests"`
	Subtasks       []string        `json:"subtasks,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  UserRecord `json:"user"`
}

type RegisterRequest struct {
	Color            string `json:"color"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
}
