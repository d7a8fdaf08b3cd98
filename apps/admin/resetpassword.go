package main

import (
	"github.com/trezcool/certquiz/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrRepo.GetUserByUsername(core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	usr.SetPassword(pwd)
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
