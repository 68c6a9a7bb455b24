package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/and161185/passbox/internal/convert"
	"github.com/and161185/passbox/internal/model"
	grpcserver "github.com/and161185/passbox/internal/server/grpc"
)

func newSignUpCmd(a *app) *cobra.Command {
	var req model.SignUpRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			out, err := a.invoke(cmd.Context(), grpcserver.MethodSignUp, req, false)
			if err != nil {
				return err
			}
			return a.print(out.AsMap())
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "master password (min 10 characters)")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm", "", "repeat the master password (defaults to --password)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var req model.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Unlock the account and save a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.invoke(cmd.Context(), grpcserver.MethodLogin, req, false)
			if err != nil {
				return err
			}
			var resp grpcserver.LoginResponse
			if err := convert.FromStruct(out, &resp); err != nil {
				return err
			}
			if resp.AccessToken == "" {
				return errors.New("server returned no access token")
			}
			if err := saveToken(tokenFile{
				Username:    resp.Account.Username,
				AccessToken: resp.AccessToken,
				ExpiresAt:   resp.ExpiresAt,
			}); err != nil {
				return err
			}
			return a.print(resp.Account)
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "master password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Lock the account and forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.invoke(cmd.Context(), grpcserver.MethodLogout, struct{}{}, true)
			if err != nil {
				return err
			}
			if err := removeToken(); err != nil {
				return err
			}
			return a.print(out.AsMap())
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password or PIN",
	}
	gen := func(use, short, method, def string) *cobra.Command {
		var length string
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out, err := a.invoke(cmd.Context(), method, grpcserver.LengthRequest{Length: length}, false)
				if err != nil {
					return err
				}
				return a.print(out.AsMap())
			},
		}
		c.Flags().StringVarP(&length, "length", "l", def, "length (1-30)")
		return c
	}
	cmd.AddCommand(
		gen("password", "Generate a password", grpcserver.MethodGeneratePassword, "16"),
		gen("pin", "Generate a numeric PIN", grpcserver.MethodGeneratePin, "4"),
	)
	return cmd
}

type itemFlags struct {
	kind     string
	title    string
	newTitle string
	sets     []string
	master   string
}

// itemCommand builds a subcommand that sends build() to method with the saved token.
func itemCommand(a *app, use, short, method string, build func() (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := build()
			if err != nil {
				return err
			}
			out, err := a.invoke(cmd.Context(), method, in, true)
			if err != nil {
				return err
			}
			return a.print(out.AsMap())
		},
	}
}

func newItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage vault items (login_info, note, credit_card, passport)",
		Long: `Manage vault items.

Examples:
  passbox item save --kind login_info --title gmail --set website=mail.google.com --set login_id=me
  passbox item edit --kind note --title diary --set content="new text"
  passbox item view --kind credit_card --title visa
  passbox item delete --kind passport --title main --master-password ...
  passbox item list --kind note`,
	}

	var save itemFlags
	saveCmd := itemCommand(a, "save", "Create an item", grpcserver.MethodSaveItem, func() (any, error) {
		item, err := buildItem(save.kind, save.title, "", save.sets)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": save.kind, "item": item}, nil
	})
	bindItemFlags(saveCmd, &save, true)

	var edit itemFlags
	editCmd := itemCommand(a, "edit", "Update some fields of an item", grpcserver.MethodEditItem, func() (any, error) {
		item, err := buildItem(edit.kind, edit.title, edit.newTitle, edit.sets)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": edit.kind, "item": item}, nil
	})
	bindItemFlags(editCmd, &edit, true)
	editCmd.Flags().StringVar(&edit.newTitle, "new-title", "", "rename the item")

	var view itemFlags
	viewCmd := itemCommand(a, "view", "Show an item with secrets decrypted", grpcserver.MethodViewItem, func() (any, error) {
		return grpcserver.ItemSelector{Kind: view.kind, Title: view.title}, nil
	})
	bindItemFlags(viewCmd, &view, false)

	var del itemFlags
	delCmd := itemCommand(a, "delete", "Delete an item (requires the master password)", grpcserver.MethodDeleteItem, func() (any, error) {
		return grpcserver.ItemSelector{Kind: del.kind, Title: del.title, MasterPassword: del.master}, nil
	})
	bindItemFlags(delCmd, &del, false)
	delCmd.Flags().StringVar(&del.master, "master-password", "", "master password")
	_ = delCmd.MarkFlagRequired("master-password")

	var list itemFlags
	listCmd := itemCommand(a, "list", "List item titles of one kind", grpcserver.MethodListItems, func() (any, error) {
		return grpcserver.ListRequest{Kind: list.kind}, nil
	})
	listCmd.Flags().StringVarP(&list.kind, "kind", "k", "", "item kind")
	_ = listCmd.MarkFlagRequired("kind")

	cmd.AddCommand(saveCmd, editCmd, viewCmd, delCmd, listCmd)
	return cmd
}

func bindItemFlags(c *cobra.Command, f *itemFlags, withSets bool) {
	c.Flags().StringVarP(&f.kind, "kind", "k", "", "item kind")
	c.Flags().StringVarP(&f.title, "title", "t", "", "item title")
	_ = c.MarkFlagRequired("kind")
	_ = c.MarkFlagRequired("title")
	if withSets {
		c.Flags().StringArrayVar(&f.sets, "set", nil, "field=value (repeatable)")
	}
}
