// Command yuzu-client is a small interactive demo of the client
// library, using docopt for argument parsing the way
// bringyour-connect/connectctl/main.go parses its own subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/docopt/docopt-go"

	"github.com/yuzu-sync/yuzu/client"
	"github.com/yuzu-sync/yuzu/jsonvalue"
)

const version = "0.0.1"

func main() {
	usage := `yuzu-client.

Usage:
    yuzu-client watch <address> <path>...
    yuzu-client get <address> <path>...
    yuzu-client -h | --help

Options:
    -h --help  Show this screen.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		panic(err)
	}

	address, _ := opts["<address>"].(string)
	rawPath, _ := opts["<path>"].([]string)

	c, err := client.New(client.Options{Address: address})
	if err != nil {
		fmt.Fprintf(os.Stderr, "yuzu-client: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "yuzu-client: connect: %v\n", err)
		os.Exit(1)
	}
	defer c.Disconnect()

	if get_, _ := opts.Bool("get"); get_ {
		runGet(c, rawPath)
		return
	}
	if watch_, _ := opts.Bool("watch"); watch_ {
		runWatch(ctx, c, rawPath)
		return
	}
}

func runGet(c *client.Client, rawPath []string) {
	cur := c.At(rawPath...)
	value, err := cur.Value()
	if err != nil {
		fmt.Fprintf(os.Stderr, "yuzu-client: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s = %v\n", strings.Join(rawPath, "/"), value)
}

func runWatch(ctx context.Context, c *client.Client, rawPath []string) {
	cur := c.At(rawPath...)
	sub := cur.Subscribe(func(value jsonvalue.Value, triggeringPath jsonvalue.Path) {
		fmt.Printf("%s changed at %v: %v\n", strings.Join(rawPath, "/"), triggeringPath, value)
	})
	defer sub.Unsubscribe()

	<-ctx.Done()
}
