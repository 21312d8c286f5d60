package commands

import (
	"fmt"
	"io"
	"os"
)

type SecretsCmd struct {
	Bytes int `help:"random bytes per secret" default:"64"`

	out io.Writer
}

func (c *SecretsCmd) Run() error {
	if c.Bytes < 32 {
		return fmt.Errorf("--bytes must be at least 32, got %d", c.Bytes)
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	access, err := randomHex(c.Bytes)
	if err != nil {
		return err
	}
	refresh, err := randomHex(c.Bytes)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "HRAUTH_JWT_ACCESS_SECRET=%s\nHRAUTH_JWT_REFRESH_SECRET=%s\n", access, refresh)
	return err
}
