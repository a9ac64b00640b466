// Command smart-room drives a single room's light, window and ventilation fan
// from occupancy, light, temperature and CO2 readings, and publishes actuator
// changes to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/smart-room/internal/config"
	"github.com/sweeney/smart-room/internal/gpio"
	"github.com/sweeney/smart-room/internal/logging"
	"github.com/sweeney/smart-room/internal/metrics"
	"github.com/sweeney/smart-room/internal/mqtt"
	"github.com/sweeney/smart-room/internal/room"
	"github.com/sweeney/smart-room/internal/sensor"
	"github.com/sweeney/smart-room/internal/servo"
	"github.com/sweeney/smart-room/internal/status"
	"github.com/sweeney/smart-room/internal/web"
)

func main() {
	cfg, v, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	if err := run(cfg, v, log); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(cfg config.Config, v *viper.Viper, log zerolog.Logger) error {
	pins, err := gpio.NewRealPins(cfg.GPIOChip,
		[]int{cfg.Pins.Infrared, cfg.Pins.Photoresistor},
		[]int{cfg.Pins.LED, cfg.Pins.Fan})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer closeLogged(log, "gpio", pins)

	therm, err := sensor.NewBMP280(cfg.I2CBus, cfg.BMP280Addr)
	if err != nil {
		return fmt.Errorf("init thermometer: %w", err)
	}
	defer closeLogged(log, "thermometer", therm)

	co2, err := sensor.NewSenseairS8(cfg.S8Port)
	if err != nil {
		return fmt.Errorf("init co2 sensor: %w", err)
	}
	defer closeLogged(log, "co2 sensor", co2)

	if cfg.PrintState {
		return printState(os.Stdout, pins, therm, co2, cfg.Pins)
	}

	sv, err := servo.NewRPIO(cfg.ServoPin)
	if err != nil {
		return fmt.Errorf("init servo: %w", err)
	}
	defer closeLogged(log, "servo", sv)

	m := metrics.New()
	ctrl := room.New(
		m.DigitalIO(pins, metrics.ActuatorNames(cfg.Pins)),
		m.Thermometer(therm),
		m.Servo(sv),
		m.CO2Sensor(co2),
		cfg.Pins,
	)

	instanceID := mqtt.NewInstanceID()
	publisher, err := mqtt.NewRealPublisher(cfg.Broker, mqtt.ClientID(instanceID), log)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Tracker comes first so the STARTUP payload carries a snapshot.
	tracker := status.NewTracker(time.Now(), instanceID, statusConfig(cfg))
	tracker.SetMQTTConnected(publisher.IsConnected())

	config.Watch(v, func(c config.Config) {
		logging.SetLevel(c.LogLevel)
		log.Info().Str("log_level", c.LogLevel).Msg("config reloaded; other settings apply on restart")
	}, func(err error) {
		log.Warn().Err(err).Msg("config reload rejected")
	})

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		log.Info().Msg("published startup event")
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http status server listening")
	}

	log.Info().
		Str("instance", instanceID).
		Dur("poll", cfg.Poll).
		Dur("heartbeat", cfg.Heartbeat).
		Str("broker", cfg.Broker).
		Msg("started")

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, publisher, tracker, m, log, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *room.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, m *metrics.Metrics, log zerolog.Logger, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			reason := signalName(s)
			log.Info().Str("signal", reason).Msg("shutting down")

			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn().Err(err).Msg("failed to publish shutdown event")
			} else {
				log.Info().Msg("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			result := runCycle(ctrl, m, log)

			for _, e := range result.Events {
				log.Info().
					Str("event", string(e.Type)).
					Bool("light", e.State.LightOn).
					Bool("window", e.State.WindowOpen).
					Bool("fan", e.State.FanOn).
					Msg("actuator changed")
				if err := publisher.Publish(mqtt.Event{Timestamp: t, Type: e.Type, State: e.State}); err != nil {
					log.Warn().Err(err).Str("event", string(e.Type)).Msg("publish error")
				}
			}

			tracker.RecordCycle(result, t)
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if tracker.DueHeartbeat(t, heartbeat) {
				snap := tracker.Snapshot()
				log.Info().
					Int64("cycles", snap.Cycles).
					Dur("uptime", t.Sub(snap.StartTime)).
					Msg("heartbeat")
				hb := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(hb); err != nil {
					log.Warn().Err(err).Msg("heartbeat publish error")
				}
			}
		}
	}
}

// runCycle runs the three management operations in order. A failing
// operation leaves its actuator unchanged and does not stop the others.
func runCycle(ctrl *room.Controller, m *metrics.Metrics, log zerolog.Logger) status.CycleResult {
	prev := ctrl.State()

	var r status.CycleResult
	r.LightErr = ctrl.ManageLightLevel()
	r.WindowErr = ctrl.ManageWindow()
	r.AirErr = ctrl.MonitorAirQuality()

	for _, op := range []struct {
		name string
		err  error
	}{
		{"light", r.LightErr},
		{"window", r.WindowErr},
		{"air", r.AirErr},
	} {
		m.ObserveOperation(op.name, op.err)
		if op.err != nil {
			log.Error().Err(op.err).Str("operation", op.name).Msg("cycle operation failed")
		}
	}

	r.State = ctrl.State()
	r.Events = room.Diff(prev, r.State)
	m.ObserveCycle(r.State)
	return r
}

// printState reads every sensor once and writes a one-line summary.
// No actuator is driven.
func printState(w io.Writer, dio room.DigitalIO, therm room.Thermometer, co2 room.CO2Sensor, pins room.Pins) error {
	ctrl := room.New(dio, therm, nil, co2, pins)

	occupied, err := ctrl.CheckRoomOccupancy()
	if err != nil {
		return fmt.Errorf("read occupancy: %w", err)
	}
	enough, err := ctrl.CheckEnoughLight()
	if err != nil {
		return fmt.Errorf("read light: %w", err)
	}
	temp, err := therm.Temperature()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}
	ppm, err := co2.CO2()
	if err != nil {
		return fmt.Errorf("read co2: %w", err)
	}

	fmt.Fprintf(w, "occupied: %s, light: %s, temperature: %.1f°C, co2: %d ppm\n",
		yesNo(occupied), sufficient(enough), temp, ppm)
	return nil
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		ConfigFile:  cfg.File,
		Pins:        cfg.Pins,
		ServoPin:    cfg.ServoPin,
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func closeLogged(log zerolog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("device", name).Msg("close failed")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func sufficient(b bool) string {
	if b {
		return "sufficient"
	}
	return "insufficient"
}
