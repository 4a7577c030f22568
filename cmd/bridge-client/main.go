package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/accruesavings/wallet-provisioning/cmd/flags"
	"github.com/accruesavings/wallet-provisioning/httpserver"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/urfave/cli/v2"
)

var flagRequestCode = &cli.IntFlag{
	Name:     "request-code",
	Required: true,
	Usage:    "request code of the flow the result answers",
}
var flagResultCode = &cli.IntFlag{
	Name:  "result-code",
	Value: -1,
	Usage: "platform result code (-1 OK, 0 cancelled, other values are failures)",
}
var flagIssuerTokenID = &cli.StringFlag{
	Name:  "issuer-token-id",
	Usage: "issuer token id extra returned with a successful result",
}

func main() {
	app := &cli.App{
		Name:  "bridge-client",
		Usage: "Drive a bridge simulation server",
		Flags: []cli.Flag{flags.ServerAddrFlag},
		Commands: []*cli.Command{
			{
				Name:      "post",
				Usage:     "post a bridge message",
				ArgsUsage: "<message json>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("expected exactly one message argument")
					}
					return newClient(cCtx).PostMessage(cCtx.Context, cCtx.Args().First())
				},
			},
			{
				Name:  "events",
				Usage: "drain the scripts evaluated by the session",
				Action: func(cCtx *cli.Context) error {
					resp, err := newClient(cCtx).Events(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:  "result",
				Usage: "inject a deferred platform result",
				Flags: []cli.Flag{flagRequestCode, flagResultCode, flagIssuerTokenID},
				Action: func(cCtx *cli.Context) error {
					result := httpserver.PlatformResult{
						RequestCode: cCtx.Int(flagRequestCode.Name),
						ResultCode:  cCtx.Int(flagResultCode.Name),
					}
					if id := cCtx.String(flagIssuerTokenID.Name); id != "" {
						result.Extras = map[string]any{interfaces.ExtraIssuerTokenID: id}
					}
					delivered, err := newClient(cCtx).DeliverResult(cCtx.Context, result)
					if err != nil {
						return err
					}
					return printJSON(httpserver.PlatformResultResponse{Delivered: delivered})
				},
			},
			{
				Name:  "state",
				Usage: "show the session state",
				Action: func(cCtx *cli.Context) error {
					resp, err := newClient(cCtx).State(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:  "testmode",
				Usage: "reconfigure the simulated platform",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "enabled", Usage: "enable test mode"},
					&cli.BoolFlag{Name: "mock-success", Usage: "simulated outcomes succeed"},
					&cli.Int64Flag{Name: "delay-ms", Usage: "simulated outcome delay in milliseconds"},
					&cli.StringFlag{Name: "error-code", Usage: "error code of simulated failures"},
					&cli.StringFlag{Name: "error-message", Usage: "error message of simulated failures"},
				},
				Action: func(cCtx *cli.Context) error {
					var req httpserver.TestModeRequest
					if cCtx.IsSet("enabled") {
						v := cCtx.Bool("enabled")
						req.Enabled = &v
					}
					if cCtx.IsSet("mock-success") {
						v := cCtx.Bool("mock-success")
						req.MockSuccess = &v
					}
					if cCtx.IsSet("delay-ms") {
						v := cCtx.Int64("delay-ms")
						req.DelayMillis = &v
					}
					if cCtx.IsSet("error-code") {
						v := cCtx.String("error-code")
						req.ErrorCode = &v
					}
					if cCtx.IsSet("error-message") {
						v := cCtx.String("error-message")
						req.ErrorMessage = &v
					}
					resp, err := newClient(cCtx).SetTestMode(cCtx.Context, req)
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) *httpserver.BridgeClient {
	return &httpserver.BridgeClient{ServerAddr: cCtx.String(flags.ServerAddrFlag.Name)}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
