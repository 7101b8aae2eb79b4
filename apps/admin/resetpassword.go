package main

import (
	"github.com/studsight/studsight/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	tchr, err := cli.tchrRepo.GetTeacherByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := tchr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.tchrRepo.UpdateTeacher(tchr, nil)
	return err
}
