package model

import "fmt"

var errEmptyName = fmt.Errorf("node name must not be empty")

func errDuplicateName(name string) error {
	return fmt.Errorf("node name %q is already registered", name)
}
