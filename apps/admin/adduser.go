package main

import (
	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, name, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsername(uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			CreatedAt: core.FormatTimestamp(nowFunc()),
		}
	}
	usr.Name = core.CleanString(name)
	usr.Email = email
	usr.Role = user.RoleOperator
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.SetPassword(pwd)

	if err == user.ErrNotFound {
		_, err = cli.usrRepo.CreateUser(usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(usr)
	}
	return err
}
