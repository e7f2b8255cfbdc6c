package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/yanun0323/logs"

	"riskgate/internal/client"
	"riskgate/internal/schema"
)

func main() {
	network := flag.String("network", "tcp", "Gateway network: tcp or unix")
	host := flag.String("host", "127.0.0.1", "Gateway host for tcp")
	socket := flag.String("socket", "", "Gateway socket path for unix")
	send := flag.String("send", "", `Send one request and exit, e.g. "1 1 1 10 100000 B"`)
	timeout := flag.Duration("timeout", 5*time.Second, "Wait limit for a response")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <port>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	address, err := resolveAddress(*network, *host, *socket, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, *timeout)
	c, err := client.Dial(dialCtx, *network, address)
	cancel()
	if err != nil {
		logs.Errorf("connection failed, err: %+v", err)
		os.Exit(1)
	}
	defer c.Close()

	if *send != "" {
		line, err := sendOnce(ctx, c, *send, *timeout)
		if err != nil {
			logs.Errorf("send failed, err: %+v", err)
			os.Exit(1)
		}
		fmt.Println(line)
		return
	}

	if err := client.RunPrompt(ctx, c, os.Stdin, os.Stdout); err != nil {
		logs.Errorf("session ended, err: %+v", err)
		os.Exit(1)
	}
}

func resolveAddress(network, host, socket string, args []string) (string, error) {
	if network == "unix" {
		if socket == "" {
			return "", fmt.Errorf("-socket is required for -network=unix")
		}
		return socket, nil
	}
	if len(args) != 1 {
		return "", fmt.Errorf("expected <port>")
	}
	if _, err := strconv.ParseUint(args[0], 10, 16); err != nil {
		return "", fmt.Errorf("invalid port %q", args[0])
	}
	return net.JoinHostPort(host, args[0]), nil
}

func sendOnce(ctx context.Context, c *client.Client, line string, timeout time.Duration) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty request")
	}
	n, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return "", fmt.Errorf("invalid message type %q", fields[0])
	}
	msg, err := client.ParseMessage(schema.MessageType(n), fields[1:])
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Exchange(ctx, msg)
}
