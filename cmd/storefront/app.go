package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/urfave/cli/v2"
)

const appContextKey = "appcontext"

func newApp() *cli.App {
	return &cli.App{
		Name:  "storefront",
		Usage: "browse products, manage the cart and review orders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   ".env",
				Usage:   "path of the .env config file",
				EnvVars: []string{"STOREFRONT_CONFIG"},
			},
		},
		Before: setUp,
		After:  tearDown,
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in with username and password",
				Flags: credentialFlags(),
				Action: func(c *cli.Context) error {
					return login(c, false)
				},
			},
			{
				Name:  "register",
				Usage: "create an account and sign in",
				Flags: credentialFlags(),
				Action: func(c *cli.Context) error {
					return login(c, true)
				},
			},
			{Name: "logout", Usage: "sign out and forget the local session", Action: logout},
			{Name: "whoami", Usage: "show the signed in user", Action: whoami},
			{Name: "products", Usage: "list products of the current page", Action: products},
			{Name: "next", Usage: "go to the next product page", Action: nextPage},
			{Name: "prev", Usage: "go to the previous product page", Action: prevPage},
			{Name: "product", Usage: "show one product", ArgsUsage: "<id>", Action: showProduct},
			{Name: "cart", Usage: "show the cart with totals", Action: showCart},
			{Name: "add", Usage: "add one unit of a product to the cart", ArgsUsage: "<id>", Action: addToCart},
			{Name: "remove", Usage: "remove one unit of a product from the cart", ArgsUsage: "<id>", Action: removeFromCart},
			{Name: "checkout", Usage: "place an order with the current cart", Action: checkout},
			{Name: "orders", Usage: "show order history, most recent first", Action: orders},
		},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"STOREFRONT_PASSWORD"}},
	}
}

func setUp(c *cli.Context) error {
	cf, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	l := logger.New(cf.LogLevel, cf.LogFormat, "storefront", c.App.ErrWriter)

	app, err := appcontext.NewApplicationContext(c.Context, cf, l)
	if err != nil {
		return cli.Exit(fmt.Sprintf("start storefront: %v", err), 2)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[appContextKey] = app
	return nil
}

func tearDown(c *cli.Context) error {
	app, ok := c.App.Metadata[appContextKey].(*appcontext.ApplicationContext)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, appContextKey)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.Shutdown(ctx)
}

func appFrom(c *cli.Context) (*appcontext.ApplicationContext, error) {
	app, ok := c.App.Metadata[appContextKey].(*appcontext.ApplicationContext)
	if !ok {
		return nil, errors.New("application context is not initialized")
	}
	return app, nil
}
