package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/identity"
)

type decoded struct {
	Name      string `yaml:"name"`
	Decorator string `yaml:"decorator"`
	Subject   string `yaml:"subject"`
	Argument  string `yaml:"argument"`
}

func newNameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name <decorator> <subject> <argument>",
		Short: "Print the name of the proxy of a decorator and a subject",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			name, err := identity.Encode(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if settings.PackagePath != "" {
				name = descriptor.Qualify(settings.PackagePath, name)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
			return err
		},
	}
	cmd.Flags().String("package-path", "", "Qualify the name with the import path of its package")
	return cmd
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <proxy>",
		Short: "Print the decorator, subject and argument of a proxy name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, found, err := identity.Decode(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s is not a proxy name", errdefs.ErrInvalidIdentity, args[0])
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			defer encoder.Close()
			return encoder.Encode(decoded{
				Name:      args[0],
				Decorator: id.Decorator,
				Subject:   id.Subject,
				Argument:  id.Argument,
			})
		},
	}
}
