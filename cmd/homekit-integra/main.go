package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/caarlos0/env/v11"
	integra "github.com/caarlos0/homekit-integra"
	"github.com/cenkalti/backoff/v4"
	logp "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed index.html
var index []byte

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "homekit",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type Executor = func(ctx context.Context, fn func(cli *integra.Client) error) error

const manufacturer = "Satel"

func main() {
	log.Info(
		"homekit-integra",
		"version", version,
		"commit", commit,
		"date", date,
		"info", "Homekit bridge for Satel INTEGRA alarm systems with an ETHM-1 module",
	)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(
			"could not parse env",
			"err",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: ")+"\n",
		)
	}
	if cfg.Debug {
		log.SetLevel(logp.DebugLevel)
	}

	log.Info("loading accessories", "zones", allZoneConfigs(cfg.allZones()).String())

	cli, err := newClient(cfg)
	if err != nil {
		log.Fatal("could not create client", "err", err)
	}
	execute := newExecutor(cli)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var panel integra.PanelVersion
	var module integra.ModuleVersion
	var zones map[int]zoneStatus
	if err := execute(ctx, func(cli *integra.Client) (err error) {
		if panel, err = cli.PanelVersion(ctx); err != nil {
			return err
		}
		if module, err = cli.ModuleVersion(ctx); err != nil {
			return err
		}
		zones, err = pollZones(ctx, cli)
		return
	}); err != nil {
		log.Fatal("could not init accessories", "err", err)
	}
	macAddr, err := integra.MacAddress(cfg.Host)
	if err != nil {
		log.Warn(
			"could not get the mac address, needs 'cap_net_raw+ep' capabilities",
			"err", err,
		)
	}
	log.Info(
		"got alarm system information",
		"manufacturer", manufacturer,
		"model", panel.Type,
		"zones", panel.ZoneCount(),
		"outputs", panel.OutputCount(),
		"version", panel.Version,
		"module", module.Version,
		"mac", macAddr,
	)

	bridge := accessory.NewBridge(accessory.Info{
		Name:         "Alarm Bridge",
		SerialNumber: macAddr,
		Manufacturer: manufacturer,
		Model:        panel.Type,
		Firmware:     panel.Version,
	})

	sensors := setupZones(ctx, execute, cfg, zones)

	go func() {
		tick := time.NewTicker(cfg.PollInterval)
		defer tick.Stop()
		var events eventFollower
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}

			if err := execute(ctx, func(cli *integra.Client) (err error) {
				zones, err = pollZones(ctx, cli)
				return
			}); err != nil {
				log.Error("could not get zones", "err", err)
				continue
			}
			sensors.Update(zones)

			var status integra.SystemStatus
			if err := execute(ctx, func(cli *integra.Client) (err error) {
				status, err = cli.SystemStatus(ctx)
				return
			}); err != nil {
				log.Error("could not get system status", "err", err)
				continue
			}
			panelTroublesGauge.Set(boolAs[float64](status.Troubles))
			panelServiceModeGauge.Set(boolAs[float64](status.ServiceMode))

			if !cfg.Events {
				continue
			}
			var news []integra.EventRecord
			if err := execute(ctx, func(cli *integra.Client) (err error) {
				news, err = events.poll(ctx, cli)
				return
			}); err != nil {
				log.Error("could not read events", "err", err)
				continue
			}
			logEvents(news)
		}
	}()

	fs := hap.NewFsStore("./db")

	server, err := hap.NewServer(fs, bridge.A, zoneAccessories(sensors)...)
	if err != nil {
		log.Fatal("fail to create server", "error", err)
	}
	server.Addr = cfg.Address
	server.ServeMux().Handle("/metrics", promhttp.Handler())
	server.ServeMux().Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []PageItem
		for _, zone := range sensors {
			items = append(items, PageItem{
				Number:   zone.Number,
				Name:     zone.Name(),
				Open:     zone.Contact.ContactSensorState.Value() == 1,
				Tamper:   zone.Tamper.Value() == 1,
				Bypassed: !zone.Active.Value(),
				Trouble:  zone.Fault.Value() == 1,
			})
		}

		tpl := template.Must(template.New("index").Parse(string(index)))
		_ = tpl.Execute(w, struct {
			Panel string
			Zones []PageItem
		}{
			Panel: fmt.Sprintf("%s %s", panel.Type, panel.Version),
			Zones: items,
		})
	}))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("stopping server")
		signal.Stop(c)
		cancel()
	}()

	log.Info("starting server", "addr", server.Addr)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to close server", "err", err)
	}
}

func newClient(cfg Config) (*integra.Client, error) {
	opts := []integra.Option{
		integra.WithLogger(integra.NewLogger(os.Stderr, cfg.Logging, cfg.Debug)),
		integra.WithTimeouts(cfg.ConnectTimeout, cfg.ReadTimeout),
		integra.WithSendInterval(cfg.SendInterval),
		integra.WithBusyRetry(5*time.Second, 30*time.Second, cfg.BusyRetries),
	}
	if cfg.EventCatalog != "" {
		f, err := os.Open(cfg.EventCatalog)
		if err != nil {
			return nil, fmt.Errorf("could not open event catalog: %w", err)
		}
		defer f.Close()
		catalog, err := integra.LoadCatalog(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, integra.WithCatalog(catalog))
	}
	return integra.New(cfg.Host, cfg.Port, opts...)
}

// newExecutor runs fn against the panel, retrying while the module can't
// be reached.
func newExecutor(cli *integra.Client) Executor {
	return func(ctx context.Context, fn func(cli *integra.Client) error) error {
		bo := backoff.NewExponentialBackOff()
		bo.MaxInterval = time.Second * 5
		bo.MaxElapsedTime = time.Minute

		return backoff.RetryNotify(func() error {
			requestCounter.Inc()
			if err := fn(cli); err != nil {
				requestErrorCounter.Inc()
				if !errors.Is(err, integra.ErrConnection) {
					return backoff.Permanent(err)
				}
				return err
			}
			return nil
		}, backoff.WithContext(bo, ctx), func(err error, _ time.Duration) {
			log.Error("command to panel failed", "err", err)
		})
	}
}

func zoneAccessories(sensors ZoneSensors) []*accessory.A {
	var result []*accessory.A
	for _, c := range sensors {
		result = append(result, c.A)
	}
	return result
}

func boolAs[T int | float64](b bool) T {
	if b {
		return 1
	}
	return 0
}

type PageItem struct {
	Number   int
	Name     string
	Open     bool
	Tamper   bool
	Bypassed bool
	Trouble  bool
}
