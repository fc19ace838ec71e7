package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// InitCmd returns the init command.
func InitCmd(s *settings) *Command {
	return &Command{
		Flags: flag.NewFlagSet("init", flag.ContinueOnError),
		Usage: "init",
		Short: "Create the store directory",
		Long:  "Create the store files and id watermarks in store_dir. Existing stores are only verified.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			stores, err := s.openStores()
			if err != nil {
				return err
			}

			err = stores.Close()
			if err != nil {
				return fmt.Errorf("close stores: %w", err)
			}

			o.Printf("initialized %s (capacity %d)\n", stores.Dir(), s.cfg.Capacity)

			return nil
		},
	}
}
