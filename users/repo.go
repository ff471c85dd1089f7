package users

type UserRepo interface {
	Upsert(user *User) error
	Delete(id string) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	GetByUsername(username string) (*User, error)
}
