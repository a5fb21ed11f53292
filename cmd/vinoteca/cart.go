package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const defaultCartFile = ".vinoteca-cart.json"

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "manage a local shopping cart and check it out",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cart-file",
				Usage:   "file the cart is kept in",
				Value:   defaultCartFile,
				EnvVars: []string{"VINOTECA_CART_FILE"},
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a wine to the cart",
				ArgsUsage: "<product-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "qty", Aliases: []string{"q"}, Value: 1, Usage: "bottles to add"},
				},
				Action: cartAdd,
			},
			{
				Name:      "remove",
				Usage:     "remove a wine from the cart",
				ArgsUsage: "<product-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected one product id")
					}
					s := openCart(c)
					if err := s.Remove(c.Args().First()); err != nil {
						return err
					}
					return printCart(c.App.Writer, s)
				},
			},
			{
				Name:      "set",
				Usage:     "set the quantity of a wine already in the cart",
				ArgsUsage: "<product-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "qty", Aliases: []string{"q"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected one product id")
					}
					s := openCart(c)
					if err := s.UpdateQuantity(c.Args().First(), c.Int("qty")); err != nil {
						return err
					}
					return printCart(c.App.Writer, s)
				},
			},
			{
				Name:  "show",
				Usage: "print the cart",
				Action: func(c *cli.Context) error {
					return printCart(c.App.Writer, openCart(c))
				},
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: func(c *cli.Context) error {
					return openCart(c).Clear()
				},
			},
			{
				Name:  "checkout",
				Usage: "place a pending order for the cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "customer", Usage: "customer id", Required: true},
					&cli.StringFlag{Name: "notes", Usage: "note for the shop"},
				},
				Action: cartCheckout,
			},
		},
	}
}

func openCart(c *cli.Context) *cart.Session {
	logger := zerolog.New(c.App.ErrWriter).With().Timestamp().Logger().Level(zerolog.WarnLevel)
	return cart.NewSession(cart.NewFileStore(c.String("cart-file")), logger)
}

func cartAdd(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one product id")
	}

	e, err := connect(c.Context)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	product, err := e.catalogue.GetByID(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if !product.IsActive {
		return model.ErrProductNotFound
	}

	s := openCart(c)
	if err := s.Add(cart.FromProduct(product), c.Int("qty")); err != nil {
		return err
	}
	return printCart(c.App.Writer, s)
}

func cartCheckout(c *cli.Context) error {
	customerID, err := uuid.Parse(c.String("customer"))
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}

	s := openCart(c)
	current, err := s.Cart()
	if err != nil {
		return err
	}
	if current.Empty() {
		return model.ErrEmptyCart
	}

	e, err := connect(c.Context)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	customer, err := e.customers.GetByID(c.Context, customerID)
	if err != nil {
		return err
	}

	var notes *string
	if n := c.String("notes"); n != "" {
		notes = &n
	}

	quote := e.policy.Evaluate(time.Now(), customer.BirthDate, current.Subtotal())
	order, err := e.orders.CreateOrder(c.Context, customer.ID, current.Lines(), quote.Total, quote.Discount, notes)
	if err != nil {
		// The cart stays as it is so the shopper can fix it and retry.
		return err
	}

	if err := s.Clear(); err != nil {
		e.logger.Warn().Err(err).Msg("order placed but cart could not be cleared")
	}

	w := c.App.Writer
	fmt.Fprintf(w, "order %s placed for %s\n", order.OrderNumber, customer.FullName())
	if quote.Birthday {
		fmt.Fprintf(w, "happy birthday! discount: %s\n", quote.Discount.StringFixed(2))
	}
	fmt.Fprintf(w, "total: %s, pay at pickup before %s\n",
		order.Total.StringFixed(2), order.ExpiresAt.In(e.location).Format("02/01/2006 15:04"))
	return nil
}

func printCart(w io.Writer, s *cart.Session) error {
	c, err := s.Cart()
	if err != nil {
		return err
	}
	if c.Empty() {
		fmt.Fprintln(w, "cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWINE\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range c.Lines() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity,
			l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", c.Count(), c.Subtotal().StringFixed(2))
	return tw.Flush()
}
