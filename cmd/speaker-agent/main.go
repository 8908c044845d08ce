package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Krajiyah/speaker-os/pkg/api"
	"github.com/Krajiyah/speaker-os/pkg/ble"
	"github.com/Krajiyah/speaker-os/pkg/config"
	"github.com/Krajiyah/speaker-os/pkg/connection"
	"github.com/Krajiyah/speaker-os/pkg/messages"
	"github.com/Krajiyah/speaker-os/pkg/orchestrator"
	"github.com/Krajiyah/speaker-os/pkg/radio"
	"github.com/Krajiyah/speaker-os/pkg/server"
	"github.com/Krajiyah/speaker-os/pkg/storage"
	"github.com/Krajiyah/speaker-os/pkg/user"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/multierr"
)

// FirmwareVersion is a compile time var (ldflag)
var FirmwareVersion string

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigPath
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func setupLogging(level string) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if FirmwareVersion != "" {
		cfg.Device.FirmwareVersion = FirmwareVersion
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	setupLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Stack().Err(err).Msg("agent stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.OpenFileStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	presence, err := user.Load(store)
	if err != nil {
		return err
	}

	resolver, err := connection.NewDNSResolver(cfg.Network.ReachabilityServer, cfg.Network.ReachabilityName)
	if err != nil {
		return errors.Wrap(err, "creating reachability resolver")
	}
	associator := connection.NewWPASupplicant(cfg.Network.WiFiInterfaces[0], cfg.Network.AssociationTimeout)
	manager := connection.NewManager(connection.Options{
		EthernetInterfaces: cfg.Network.EthernetInterfaces,
		WiFiInterfaces:     cfg.Network.WiFiInterfaces,
	}, store, connection.NetLister{}, associator, resolver)
	if err := manager.Initialize(ctx); err != nil {
		log.Warn().Err(err).Str("component", "agent").Msg("network initialization incomplete")
	}

	o := orchestrator.New(manager, presence, cfg.Network.PollInterval)
	presence.OnChange(func(ev user.Event) {
		o.OnUserChanged(!ev.Cleared && ev.User.Present(), ev.Cleared)
	})

	var (
		peripheral  *ble.RealPeripheral
		advertising api.Advertising
	)
	bootstrap := radio.NewDefaultBootstrapper(cfg.Radio.DaemonUnit, cfg.Radio.Adapter, cfg.Radio.HciconfigPath)
	if err := bootstrap.Prepare(ctx); err != nil {
		log.Error().Err(err).Str("component", "agent").Msg("radio unavailable, provisioning over BLE disabled")
	} else {
		peripheral = ble.NewRealPeripheral()
		info := server.DeviceInfo{
			AdvertisedName:  cfg.Device.AdvertisedName,
			Model:           cfg.Device.Model,
			FirmwareVersion: cfg.Device.FirmwareVersion,
		}
		srv := server.NewBLEServer(info, peripheral, manager, presence, o)
		o.SetAdvertiser(srv)
		advertising = srv
		if err := peripheral.Open(cfg.Radio.DeviceID); err != nil {
			log.Error().Err(err).Str("component", "agent").Msg("could not open HCI device")
		}
	}

	var httpServer *api.Server
	if cfg.API.Listen != "" {
		router := api.NewRouter(manager, advertising, presence, messages.NewDispatcher(presence))
		httpServer = api.NewServer(cfg.API.Listen, router)
		httpServer.Start()
	}

	runErr := make(chan error, 1)
	go func() { runErr <- o.Run(ctx) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("component", "agent").Str("signal", sig.String()).Msg("shutting down")
	case err := <-runErr:
		log.Error().Err(err).Str("component", "agent").Msg("orchestrator exited")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	var errs error
	if httpServer != nil {
		errs = multierr.Append(errs, httpServer.Shutdown(shutdownCtx))
	}
	if peripheral != nil {
		errs = multierr.Append(errs, peripheral.Close())
	}
	return errs
}
