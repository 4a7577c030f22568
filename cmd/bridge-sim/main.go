package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accruesavings/wallet-provisioning/bridge"
	"github.com/accruesavings/wallet-provisioning/cmd/flags"
	"github.com/accruesavings/wallet-provisioning/common"
	"github.com/accruesavings/wallet-provisioning/httpserver"
	"github.com/accruesavings/wallet-provisioning/metrics"
	"github.com/accruesavings/wallet-provisioning/notifier"
	"github.com/accruesavings/wallet-provisioning/orchestrator"
	"github.com/accruesavings/wallet-provisioning/provisioning"
	"github.com/accruesavings/wallet-provisioning/testmode"
	"github.com/accruesavings/wallet-provisioning/translator"
	"github.com/urfave/cli/v2"
)

var simFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for the bridge API",
	},
	&cli.StringFlag{
		Name:  "wallet-id",
		Value: "sim-wallet",
		Usage: "active wallet id reported by the simulated platform; empty means no wallet",
	},
	&cli.StringFlag{
		Name:  "hardware-id",
		Value: "sim-hardware-id",
		Usage: "stable hardware id reported by the simulated platform",
	},
	&cli.BoolFlag{
		Name:  "test-mode",
		Value: false,
		Usage: "answer provisioning requests with simulated outcomes instead of launching the platform flow",
	},
	&cli.BoolFlag{
		Name:  "mock-success",
		Value: true,
		Usage: "simulated outcomes succeed when test mode is enabled",
	},
	&cli.Int64Flag{
		Name:  "mock-delay-ms",
		Value: testmode.DefaultDelay.Milliseconds(),
		Usage: "delay of simulated outcomes in milliseconds",
	},
	&cli.DurationFlag{
		Name:  "await-timeout",
		Value: orchestrator.DefaultAwaitTimeout,
		Usage: "how long to wait for a platform result before failing the attempt; negative disables",
	},
	&cli.BoolFlag{
		Name:  "strict-networks",
		Value: false,
		Usage: "reject unrecognized card networks and token service providers",
	},
}

func main() {
	app := &cli.App{
		Name:  "bridge-sim",
		Usage: "Serve a simulated wallet provisioning session over HTTP",
		Flags: append(simFlags, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String("listen-addr"))

			tm := testmode.NewConfig()
			tm.SetTestMode(cCtx.Bool("test-mode"), cCtx.Bool("mock-success"))
			tm.SetDelay(time.Duration(cCtx.Int64("mock-delay-ms")) * time.Millisecond)

			client := testmode.NewFakeClient(cCtx.String("wallet-id"), cCtx.String("hardware-id"))
			actions := bridge.ActionFuncs{
				SignInButtonClicked: func() {
					logger.Info("Host action requested", "action", bridge.ActionSignInButtonClicked)
				},
				RegisterButtonClicked: func() {
					logger.Info("Host action requested", "action", bridge.ActionRegisterButtonClicked)
				},
				ProvisioningRequested: func() {
					logger.Info("Host action requested", "action", bridge.ActionProvisioningRequested)
				},
			}

			sdk := provisioning.NewSDK(logger, client, testmode.NewFakeDevice(), provisioning.Config{
				Orchestrator: orchestrator.Config{AwaitTimeout: cCtx.Duration("await-timeout")},
				Translator:   translator.Options{Strict: cCtx.Bool("strict-networks")},
				TestMode:     tm,
			}, actions)

			var metricsSrv *metrics.MetricsServer
			if cfg.MetricsAddr != "" {
				metricsSrv = metrics.New(cfg.MetricsAddr)
				collector, err := metrics.NewCollector(common.PackageName, metricsSrv.Registry())
				if err != nil {
					logger.Error("Failed to register metrics", "err", err)
					return err
				}
				sdk.SetObserver(collector)
			}

			host := &notifier.RecordingHost{}
			sdk.Initialize(&testmode.FakeActivity{}, host)
			defer sdk.Cleanup()

			server := httpserver.New(cfg, httpserver.NewHandler(sdk, host, logger), metricsSrv)
			logger.Info("Starting server", "testMode", tm.Enabled())
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
