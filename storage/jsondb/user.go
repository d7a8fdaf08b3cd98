package jsondb

import (
	"sort"

	"github.com/trezcool/certquiz/core/user"
)

const usersCollection = "users"

// userRecord is the persisted shape of one account. The collection is a
// single document mapping username -> record: the username lives in the map
// key, not the record, and the digest is stored under "password" for
// compatibility with documents written by earlier versions.
type userRecord struct {
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Email     string  `json:"email,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	LastLogin *string `json:"last_login"`
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) load() map[string]user.User {
	records := make(map[string]userRecord)
	r.db.Read(usersCollection, &records)

	users := make(map[string]user.User, len(records))
	for uname, rec := range records {
		users[uname] = user.User{
			Username:     uname,
			PasswordHash: rec.Password,
			Name:         rec.Name,
			Role:         rec.Role,
			Email:        rec.Email,
			CreatedAt:    rec.CreatedAt,
			LastLogin:    rec.LastLogin,
		}
	}
	return users
}

func (r *userRepository) save(users map[string]user.User) error {
	records := make(map[string]userRecord, len(users))
	for uname, usr := range users {
		records[uname] = userRecord{
			Password:  usr.PasswordHash,
			Name:      usr.Name,
			Role:      usr.Role,
			Email:     usr.Email,
			CreatedAt: usr.CreatedAt,
			LastLogin: usr.LastLogin,
		}
	}
	return r.db.Write(usersCollection, records)
}

func (r *userRepository) CheckUsernameUniqueness(username string) error {
	if _, ok := r.load()[username]; ok {
		return user.ErrUsernameExists
	}
	return nil
}

func (r *userRepository) CreateUser(usr user.User) (user.User, error) {
	users := r.load()
	if _, ok := users[usr.Username]; ok {
		return user.User{}, user.ErrUsernameExists
	}
	users[usr.Username] = usr
	if err := r.save(users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (r *userRepository) QueryAllUsers() ([]user.User, error) {
	users := r.load()
	res := make([]user.User, 0, len(users))
	for _, usr := range users {
		res = append(res, usr)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Username < res[j].Username })
	return res, nil
}

func (r *userRepository) GetUserByUsername(username string) (user.User, error) {
	if usr, ok := r.load()[username]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) UpdateUser(usr user.User) (user.User, error) {
	users := r.load()
	if _, ok := users[usr.Username]; !ok {
		return user.User{}, user.ErrNotFound
	}
	users[usr.Username] = usr
	if err := r.save(users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (r *userRepository) DeleteUser(username string) error {
	users := r.load()
	if _, ok := users[username]; !ok {
		return user.ErrNotFound
	}
	delete(users, username)
	return r.save(users)
}
