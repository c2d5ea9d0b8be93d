package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/nrdb"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty collection file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.collectionPath()
			if collection.Exists(path) && !force {
				return NewExitError(fmt.Errorf("collection file already exists: %s (use --force to overwrite)", path), ExitValidationError)
			}

			if err := collection.Save(collection.NewState(), path); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Created empty collection file: %s\n", path)
			fmt.Fprintf(w, "\nExample format:\n\n%s", collection.Template)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing collection file")
	return cmd
}

func newPackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Add or remove owned packs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <pack-code>",
		Short: "Mark a pack as owned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, ix, err := a.openCollection(ctx)
			if err != nil {
				return err
			}
			pack, err := lookupPack(ctx, a, args[0])
			if err != nil {
				return err
			}

			m.AddPack(pack.Code)
			if err := m.Save(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Added pack: %s (%s)\n", pack.Name, pack.Code)
			fmt.Fprintf(w, "Added %d unique cards\n", len(ix.PackCards(pack.Code)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <pack-code>",
		Short: "Remove an owned pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ix, err := a.requireCollection(cmd.Context())
			if err != nil {
				return err
			}
			code := args[0]
			if !m.HasPack(code) {
				return NewExitError(fmt.Errorf("pack not in collection: %s", code), ExitNotFound)
			}

			m.RemovePack(code)
			if err := m.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed pack: %s (%s)\n", ix.PackName(code), code)
			return nil
		},
	})

	return cmd
}

func newCardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Adjust individual card counts",
		Long: `Adjust individual card counts.

Negative values must follow "--", for example:
  nrdb-companion card diff 30010 -- -1`,
	}

	cmd.AddCommand(
		cardCountCmd(a, "add <code> [count]", "Add copies of a card", func(m *collection.Manager, code string, n int) (string, error) {
			if err := m.AddCard(code, n); err != nil {
				return "", err
			}
			return fmt.Sprintf("Added %dx", n), nil
		}),
		cardCountCmd(a, "remove <code> [count]", "Remove copies, clearing missing copies first", func(m *collection.Manager, code string, n int) (string, error) {
			return removeCard(m, code, n)
		}),
		cardCountCmd(a, "set <code> <count>", "Set the absolute number of copies owned", func(m *collection.Manager, code string, n int) (string, error) {
			if err := m.SetAbsoluteCount(code, n); err != nil {
				return "", err
			}
			return fmt.Sprintf("Set count to %d for", n), nil
		}),
		cardCountCmd(a, "diff <code> <difference>", "Set the signed difference from the pack-derived count", func(m *collection.Manager, code string, n int) (string, error) {
			m.SetDifference(code, n)
			return fmt.Sprintf("Set difference to %+d for", n), nil
		}),
		cardCountCmd(a, "missing <code> [count]", "Mark copies as missing", func(m *collection.Manager, code string, n int) (string, error) {
			if err := m.AddMissing(code, n); err != nil {
				return "", err
			}
			return fmt.Sprintf("Marked %dx missing:", n), nil
		}),
		cardCountCmd(a, "found <code> [count]", "Mark missing copies as found", func(m *collection.Manager, code string, n int) (string, error) {
			if err := m.RemoveMissing(code, n); err != nil {
				return "", err
			}
			return fmt.Sprintf("Marked %dx found:", n), nil
		}),
	)

	return cmd
}

type cardAction func(m *collection.Manager, code string, n int) (string, error)

// cardCountCmd builds a "<verb> <code> [count]" subcommand. The count
// defaults to 1 unless the usage marks it as required.
func cardCountCmd(a *app, use, short string, action cardAction) *cobra.Command {
	required := !strings.Contains(use, "[")
	args := cobra.RangeArgs(1, 2)
	if required {
		args = cobra.ExactArgs(2)
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			code := args[0]
			n := 1
			if len(args) == 2 {
				v, err := strconv.Atoi(args[1])
				if err != nil {
					return NewExitError(fmt.Errorf("invalid count %q", args[1]), ExitValidationError)
				}
				n = v
			}

			m, _, err := a.openCollection(ctx)
			if err != nil {
				return err
			}
			card, err := lookupCard(ctx, a, code)
			if err != nil {
				return err
			}

			msg, err := action(m, card.Code, n)
			if err != nil {
				return err
			}
			if err := m.Save(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s (%s)\n", msg, card.Title, card.Code)
			fmt.Fprintf(w, "Available count: %d\n", m.AvailableCount(card.Code))
			return nil
		},
	}
}

// removeCard takes copies off the missing list before reducing the count.
func removeCard(m *collection.Manager, code string, n int) (string, error) {
	if n < 0 {
		return "", &collection.ValidationError{Code: code, Field: "count", Value: n, Message: "must not be negative"}
	}

	fromMissing := min(n, m.MissingCount(code))
	if fromMissing > 0 {
		if err := m.RemoveMissing(code, fromMissing); err != nil {
			return "", err
		}
	}
	rest := n - fromMissing
	if rest > 0 {
		if err := m.RemoveCard(code, rest); err != nil {
			return "", err
		}
	}

	switch {
	case fromMissing > 0 && rest > 0:
		return fmt.Sprintf("Removed %dx from missing list and %dx from collection:", fromMissing, rest), nil
	case fromMissing > 0:
		return fmt.Sprintf("Removed %dx from missing list:", fromMissing), nil
	default:
		return fmt.Sprintf("Removed %dx", rest), nil
	}
}

func lookupCard(ctx context.Context, a *app, code string) (cards.Card, error) {
	svc, err := a.openCatalog()
	if err != nil {
		return cards.Card{}, err
	}
	card, err := svc.CardByCode(ctx, code)
	if nrdb.IsNotFound(err) {
		return cards.Card{}, fmt.Errorf("card not found: %s: %w", code, err)
	}
	return card, err
}

func lookupPack(ctx context.Context, a *app, code string) (cards.Pack, error) {
	svc, err := a.openCatalog()
	if err != nil {
		return cards.Pack{}, err
	}
	pack, err := svc.PackByCode(ctx, code)
	if nrdb.IsNotFound(err) {
		return cards.Pack{}, fmt.Errorf("pack not found: %s (use 'nrdb-companion packs' to list packs): %w", code, err)
	}
	return pack, err
}
