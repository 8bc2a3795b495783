package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"audiobook-storefront/cart"
)

func newAddCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add [id]",
		Short: "Add one copy of an audiobook to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			item, err := a.Storefront.AddToCart(ctx, id)
			if err != nil {
				return o.fail(ctx, out, a, err)
			}
			return o.renderer.Message(out, a.Storefront.Page(ctx, "Cart"), fmt.Sprintf("Added %q to the cart.", item.Title))
		},
	}
}

func newCartCmd(o *rootOptions) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart with current prices",
		Long: `Shows the cart priced by the cart service. When the service is unavailable the
prices saved with each line are shown instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCart(cmd, func(ctx context.Context, s cartMutator) (cart.Outcome, error) {
				return s.ShowCart(ctx), nil
			})
		},
	}

	lineCmd := func(use, short string, mutate func(cartMutator) func(context.Context, string) (cart.Outcome, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [id]",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withCart(cmd, func(ctx context.Context, s cartMutator) (cart.Outcome, error) {
					return mutate(s)(ctx, args[0])
				})
			},
		}
	}

	cartCmd.AddCommand(
		lineCmd("inc", "Add one copy of a cart line", func(s cartMutator) func(context.Context, string) (cart.Outcome, error) {
			return s.IncrementLine
		}),
		lineCmd("dec", "Remove one copy of a cart line", func(s cartMutator) func(context.Context, string) (cart.Outcome, error) {
			return s.DecrementLine
		}),
		lineCmd("remove", "Remove a cart line", func(s cartMutator) func(context.Context, string) (cart.Outcome, error) {
			return s.RemoveLine
		}),
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withCart(cmd, func(ctx context.Context, s cartMutator) (cart.Outcome, error) {
					return s.ClearCart(ctx)
				})
			},
		},
	)
	return cartCmd
}

// cartMutator is the part of the storefront the cart commands use
type cartMutator interface {
	ShowCart(ctx context.Context) cart.Outcome
	IncrementLine(ctx context.Context, id string) (cart.Outcome, error)
	DecrementLine(ctx context.Context, id string) (cart.Outcome, error)
	RemoveLine(ctx context.Context, id string) (cart.Outcome, error)
	ClearCart(ctx context.Context) (cart.Outcome, error)
}

// withCart runs fn and renders the resulting cart page
func (o *rootOptions) withCart(cmd *cobra.Command, fn func(context.Context, cartMutator) (cart.Outcome, error)) error {
	ctx := cmd.Context()
	a, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	outcome, err := fn(ctx, a.Storefront)
	if err != nil {
		return o.fail(ctx, out, a, err)
	}
	if err := o.renderer.Cart(out, a.Storefront.Page(ctx, "Cart"), outcome); err != nil {
		return err
	}
	if outcome.Kind == cart.OutcomeFailed {
		return &reportedError{err: outcome.Reason}
	}
	return nil
}

func newCheckoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long:  `Places an order for every line in the cart. Requires a prior login.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			result, err := a.Storefront.Checkout(ctx)
			if err != nil {
				return o.fail(ctx, out, a, err)
			}
			return o.renderer.Order(out, a.Storefront.Page(ctx, "Order placed"), result)
		},
	}
}
