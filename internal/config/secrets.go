package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "featherdb"

// StorePassword saves the password of profile name in the OS keyring.
func StorePassword(name, password string) error {
	if err := keyring.Set(keyringService, name, password); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// DeletePassword removes the password of profile name from the OS keyring.
// A missing entry is not an error.
func DeletePassword(name string) error {
	if err := keyring.Delete(keyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// ResolvePassword returns a copy of c with the password filled in from the
// OS keyring when the profile does not carry one. SQLite profiles are
// returned unchanged, and so are profiles whose lookup fails for any reason,
// including a host without a keyring; the server then decides whether the
// login needs a password.
func (c Connection) ResolvePassword() Connection {
	if c.Password != "" || c.Driver == DriverSQLite || c.Name == "" {
		return c
	}

	password, err := keyring.Get(keyringService, c.Name)
	if err != nil {
		return c
	}

	c.Password = password
	return c
}
