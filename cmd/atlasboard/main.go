package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/spi"

	"atlasboard/internal/board"
	"atlasboard/internal/config"
	appLog "atlasboard/internal/log"
	"atlasboard/internal/panel"
	"atlasboard/internal/pinctrl"
	"atlasboard/internal/pmic"
	"atlasboard/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	simulate   bool
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.simulate {
		conf.Simulate = true
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("atlasboard starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"simulate", conf.Simulate,
		"spi_port", conf.SPIPort,
		"i2c_bus", conf.I2CBus,
		"pin_overrides", len(conf.Pins),
		"suspend", conf.Schedule.Suspend,
		"resume", conf.Schedule.Resume,
		"once", flags.once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b, closer, err := setupBoard(conf)
	if err != nil {
		appLog.Error("board setup failed", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := b.BringUp(ctx); err != nil {
		appLog.Error("board bring-up failed", err)
		os.Exit(1)
	}
	if flags.once {
		appLog.Info("single bring-up done", "mtdparts", b.MTDParts())
		return
	}

	sched, err := startSchedule(conf.Schedule, b)
	if err != nil {
		appLog.Error("invalid schedule", err)
		os.Exit(1)
	}

	// Any top-level process failing stops the others through ctx.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.NewServer(conf, b).Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		<-sched.Stop().Done()
		return b.Shutdown()
	})
	if err := g.Wait(); err != nil {
		appLog.Error("atlasboard stopped with error", err)
	}
	appLog.Info("atlasboard exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath, "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.simulate, "simulate", false, "Use simulated GPIO lines and SPI bus")
	flag.BoolVar(&cfg.once, "once", false, "Bring the board up once and exit")

	flag.Parse()

	return cfg
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupBoard picks the hardware or simulated backends and builds the board.
func setupBoard(conf *config.Config) (*board.Board, io.Closer, error) {
	names, err := conf.PinNames()
	if err != nil {
		return nil, nil, err
	}

	var (
		reg    *pinctrl.Registry
		conn   spi.Conn
		closer io.Closer = nopCloser{}
		prober pmic.Prober
	)
	if conf.Simulate {
		reg, _ = pinctrl.NewSimulated(names)
		conn = &panel.SimConn{}
		prober = pmic.NewMockProber(pmic.Devices)
	} else {
		if reg, err = pinctrl.NewHost(names); err != nil {
			return nil, nil, err
		}
		if conn, closer, err = panel.OpenSPI(conf.SPIPort, panel.TL2796SPI); err != nil {
			return nil, nil, err
		}
		prober = pmic.NewI2CProber(conf.I2CBus, pmic.Devices)
	}

	b, err := board.New(reg, conn, board.Options{
		Prober:          prober,
		GammaBrightness: conf.Brightness(),
	})
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return b, closer, nil
}

// startSchedule registers the suspend and resume jobs and starts the
// scheduler. Empty specs are skipped.
func startSchedule(s config.ScheduleConfig, b *board.Board) (*cron.Cron, error) {
	c := cron.New()
	jobs := []struct {
		name string
		spec string
		run  func() error
	}{
		{"suspend", s.Suspend, b.EarlySuspend},
		{"resume", s.Resume, b.LateResume},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := c.AddFunc(j.spec, func() {
			appLog.Info("scheduled panel job", "job", j.name)
			if err := j.run(); err != nil {
				appLog.Error("scheduled panel job failed", err, "job", j.name)
			}
		}); err != nil {
			return nil, err
		}
		appLog.Info("panel job scheduled", "job", j.name, "spec", j.spec)
	}
	c.Start()
	return c, nil
}
