package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/urfave/cli/v2"
)

func login(c *cli.Context, register bool) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	username, password := c.String("username"), c.String("password")

	var msg string
	if register {
		msg, err = app.AuthService.Register(c.Context, username, password)
	} else {
		msg, err = app.AuthService.Login(c.Context, username, password)
	}
	if err != nil {
		return authFailure(err)
	}
	fmt.Fprintln(c.App.Writer, msg)
	return nil
}

// 依登入結果給下一步提示
func authFailure(err error) error {
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		return cli.Exit(err.Error(), 1)
	}
	switch authErr.Outcome {
	case api.LoginNotRegistered:
		return cli.Exit(authErr.Message+", run `storefront register` to create an account", 1)
	default:
		return cli.Exit(authErr.Message+", check username and password and retry", 1)
	}
}

func logout(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	app.AuthService.Logout()
	fmt.Fprintln(c.App.Writer, "logged out")
	return nil
}

func whoami(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	user := app.Store.User()
	if !user.SignedIn() {
		fmt.Fprintln(c.App.Writer, "not signed in")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s (%s), %d item(s) in cart\n", user.Username, user.ID, len(user.Cart))
	return nil
}

func products(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	if err := app.CatalogService.LoadPage(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("load products: %v", err), 1)
	}
	printPage(c.App.Writer, app.Store.Products())
	return nil
}

func nextPage(c *cli.Context) error {
	return movePage(c, true)
}

func prevPage(c *cli.Context) error {
	return movePage(c, false)
}

func movePage(c *cli.Context, forward bool) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	if forward {
		err = app.CatalogService.NextPage(c.Context)
	} else {
		err = app.CatalogService.PrevPage(c.Context)
	}
	switch {
	case errors.Is(err, service.ErrLastPage), errors.Is(err, service.ErrFirstPage):
		return cli.Exit(err.Error(), 1)
	case err != nil:
		return cli.Exit(fmt.Sprintf("load products: %v", err), 1)
	}
	printPage(c.App.Writer, app.Store.Products())
	return nil
}

func printPage(out io.Writer, state model.ProductState) {
	fmt.Fprintf(out, "page %d\n", state.PageNo)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE\tRATING\tSTOCK")
	for _, p := range state.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%d\n", p.ID, p.Name, p.Brand, p.Price.StringFixed(2), p.Rating, p.CountInStock)
	}
	tw.Flush()

	switch {
	case service.HasPrevPage(state) && service.HasNextPage(state):
		fmt.Fprintln(out, "more: prev | next")
	case service.HasNextPage(state):
		fmt.Fprintln(out, "more: next")
	case service.HasPrevPage(state):
		fmt.Fprintln(out, "more: prev")
	}
}

func showProduct(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	id := c.Args().First()
	if id == "" {
		return cli.Exit("product id is required", 2)
	}
	p, err := app.CatalogService.ShowProduct(c.Context, id)
	if err != nil {
		return cli.Exit(fmt.Sprintf("load product %s: %v", id, err), 1)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "%s  %s\n", p.ID, p.Name)
	fmt.Fprintf(out, "brand: %s  category: %s\n", p.Brand, p.Category)
	fmt.Fprintf(out, "price: %s\n", p.Price.StringFixed(2))
	fmt.Fprintf(out, "rating: %.1f (%d reviews)\n", p.Rating, p.NumReviews)
	fmt.Fprintf(out, "in stock: %d\n", p.CountInStock)
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	if item, ok := model.FindCartItem(app.Store.User().Cart, p.ID); ok {
		fmt.Fprintf(out, "in cart: %d\n", item.Quantity)
	}
	return nil
}

func showCart(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	user := app.Store.User()
	if !user.SignedIn() {
		return cli.Exit(service.ErrNotSignedIn.Error(), 1)
	}
	out := c.App.Writer
	if len(user.Cart) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tLINE TOTAL")
	for _, item := range user.Cart {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", item.ID, item.Name, item.Quantity,
			item.Price.StringFixed(2), app.OrderService.LineTotal(item).StringFixed(2))
	}
	tw.Flush()

	totals := app.OrderService.Totals(user.Cart)
	fmt.Fprintf(out, "subtotal: %s\n", totals.Subtotal.StringFixed(2))
	fmt.Fprintf(out, "delivery: %s\n", totals.Delivery.StringFixed(2))
	fmt.Fprintf(out, "total:    %s\n", totals.Total.StringFixed(2))
	return nil
}

func addToCart(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	id := c.Args().First()
	if id == "" {
		return cli.Exit("product id is required", 2)
	}
	if !app.Store.User().SignedIn() {
		return cli.Exit(service.ErrNotSignedIn.Error(), 1)
	}
	p, err := app.Client.FetchProduct(c.Context, id)
	if err != nil {
		return cli.Exit(fmt.Sprintf("load product %s: %v", id, err), 1)
	}
	if err := app.CartService.Add(c.Context, p); err != nil {
		return cli.Exit(fmt.Sprintf("add %s to cart: %v", id, err), 1)
	}
	printQuantity(c.App.Writer, app.Store.User().Cart, p)
	return nil
}

func removeFromCart(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	id := c.Args().First()
	if id == "" {
		return cli.Exit("product id is required", 2)
	}
	user := app.Store.User()
	if !user.SignedIn() {
		return cli.Exit(service.ErrNotSignedIn.Error(), 1)
	}
	item, ok := model.FindCartItem(user.Cart, id)
	if !ok {
		return cli.Exit(fmt.Sprintf("%s is not in the cart", id), 1)
	}
	if err := app.CartService.Remove(c.Context, item.Product); err != nil {
		return cli.Exit(fmt.Sprintf("remove %s from cart: %v", id, err), 1)
	}
	printQuantity(c.App.Writer, app.Store.User().Cart, item.Product)
	return nil
}

func printQuantity(out io.Writer, cart []model.CartItem, p model.Product) {
	item, ok := model.FindCartItem(cart, p.ID)
	if !ok {
		fmt.Fprintf(out, "%s removed from cart\n", p.Name)
		return
	}
	fmt.Fprintf(out, "%s x %d in cart\n", p.Name, item.Quantity)
}

func checkout(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	totals := app.OrderService.Totals(app.Store.User().Cart)
	if err := app.OrderService.Checkout(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("checkout: %v", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "order placed, total %s\n", totals.Total.StringFixed(2))
	return nil
}

func orders(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	if err := app.OrderService.Refresh(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("load orders: %v", err), 1)
	}
	history := app.Store.User().Orders
	out := c.App.Writer
	if len(history) == 0 {
		fmt.Fprintln(out, "no orders yet")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tID\tNAME\tQTY\tAMOUNT")
	for _, o := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.Date, o.ID, o.Name, o.Quantity, o.LineAmount().StringFixed(2))
	}
	return tw.Flush()
}
