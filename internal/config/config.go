// Package config loads daemon settings from defaults, an optional config file,
// SMART_ROOM_* environment variables and command-line flags, in increasing
// order of precedence. Control thresholds are fixed in package room.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/smart-room/internal/gpio"
	"github.com/sweeney/smart-room/internal/room"
	"github.com/sweeney/smart-room/internal/sensor"
	"github.com/sweeney/smart-room/internal/servo"
)

// EnvPrefix prefixes environment overrides, e.g. SMART_ROOM_BROKER.
const EnvPrefix = "SMART_ROOM"

// Name is the config file base name searched for in the config paths.
const Name = "smart-room"

var searchPaths = []string{".", "./config", "/etc/smart-room"}

// Config contains daemon settings.
type Config struct {
	LogLevel   string
	Poll       time.Duration
	Heartbeat  time.Duration
	Broker     string
	HTTPAddr   string
	GPIOChip   string
	Pins       room.Pins
	ServoPin   int
	I2CBus     string
	BMP280Addr uint16
	S8Port     string
	PrintState bool

	// File is the config file in use, empty when running on defaults.
	File string
}

// maxPin is the highest BCM pin on the 40-pin header.
const maxPin = 27

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("poll", time.Second)
	v.SetDefault("heartbeat", 15*time.Minute)
	v.SetDefault("broker", "tcp://localhost:1883")
	v.SetDefault("http", ":8080")
	v.SetDefault("gpio_chip", gpio.DefaultChip)
	v.SetDefault("pin_infrared", room.DefaultPins.Infrared)
	v.SetDefault("pin_photoresistor", room.DefaultPins.Photoresistor)
	v.SetDefault("pin_led", room.DefaultPins.LED)
	v.SetDefault("pin_fan", room.DefaultPins.Fan)
	v.SetDefault("pin_servo", servo.DefaultPin)
	v.SetDefault("i2c_bus", sensor.DefaultI2CBus)
	v.SetDefault("bmp280_addr", sensor.BMP280AddrLow)
	v.SetDefault("s8_port", sensor.DefaultS8Port)
	v.SetDefault("print_state", false)
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":         "log_level",
	"poll":              "poll",
	"heartbeat":         "heartbeat",
	"broker":            "broker",
	"http":              "http",
	"gpio-chip":         "gpio_chip",
	"pin-infrared":      "pin_infrared",
	"pin-photoresistor": "pin_photoresistor",
	"pin-led":           "pin_led",
	"pin-fan":           "pin_fan",
	"pin-servo":         "pin_servo",
	"i2c-bus":           "i2c_bus",
	"bmp280-addr":       "bmp280_addr",
	"s8-port":           "s8_port",
	"print-state":       "print_state",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(Name, pflag.ContinueOnError)
	fs.String("config", "", "Config file (default: search for smart-room.{yaml,toml,json})")
	fs.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	fs.Duration("poll", time.Second, "Control cycle interval")
	fs.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.String("broker", "tcp://localhost:1883", "MQTT broker address")
	fs.String("http", ":8080", "HTTP status address (empty to disable)")
	fs.String("gpio-chip", gpio.DefaultChip, "GPIO character device")
	fs.Int("pin-infrared", room.DefaultPins.Infrared, "BCM pin of the infrared presence sensor")
	fs.Int("pin-photoresistor", room.DefaultPins.Photoresistor, "BCM pin of the photoresistor circuit")
	fs.Int("pin-led", room.DefaultPins.LED, "BCM pin of the LED")
	fs.Int("pin-fan", room.DefaultPins.Fan, "BCM pin of the ventilation fan")
	fs.Int("pin-servo", servo.DefaultPin, "BCM pin of the window servo (hardware PWM)")
	fs.String("i2c-bus", sensor.DefaultI2CBus, "I2C bus of the BMP280")
	fs.Uint16("bmp280-addr", sensor.BMP280AddrLow, "I2C address of the BMP280")
	fs.String("s8-port", sensor.DefaultS8Port, "Serial port of the Senseair S8")
	fs.Bool("print-state", false, "Print current sensor readings and exit")
	return fs
}

// Load parses args and returns the merged configuration along with the viper
// instance backing it, for use with Watch. pflag.ErrHelp is returned as-is.
func Load(args []string) (Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return Config{}, nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	addr := v.GetUint("bmp280_addr")
	if addr > math.MaxUint16 {
		return Config{}, fmt.Errorf("bmp280 address 0x%x out of range", addr)
	}

	cfg := Config{
		LogLevel:  v.GetString("log_level"),
		Poll:      v.GetDuration("poll"),
		Heartbeat: v.GetDuration("heartbeat"),
		Broker:    v.GetString("broker"),
		HTTPAddr:  v.GetString("http"),
		GPIOChip:  v.GetString("gpio_chip"),
		Pins: room.Pins{
			Infrared:      v.GetInt("pin_infrared"),
			Photoresistor: v.GetInt("pin_photoresistor"),
			LED:           v.GetInt("pin_led"),
			Fan:           v.GetInt("pin_fan"),
		},
		ServoPin:   v.GetInt("pin_servo"),
		I2CBus:     v.GetString("i2c_bus"),
		BMP280Addr: uint16(addr),
		S8Port:     v.GetString("s8_port"),
		PrintState: v.GetBool("print_state"),
		File:       v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks intervals, the BMP280 address and pin assignments.
func (c Config) Validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("poll must be positive, got %v", c.Poll)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat)
	}
	if c.BMP280Addr != sensor.BMP280AddrLow && c.BMP280Addr != sensor.BMP280AddrHigh {
		return fmt.Errorf("bmp280 address 0x%x must be 0x%x or 0x%x",
			c.BMP280Addr, sensor.BMP280AddrLow, sensor.BMP280AddrHigh)
	}

	pins := []struct {
		name string
		pin  int
	}{
		{"infrared", c.Pins.Infrared},
		{"photoresistor", c.Pins.Photoresistor},
		{"led", c.Pins.LED},
		{"fan", c.Pins.Fan},
		{"servo", c.ServoPin},
	}
	seen := make(map[int]string, len(pins))
	for _, p := range pins {
		if p.pin < 0 || p.pin > maxPin {
			return fmt.Errorf("%s pin %d out of range [0, %d]", p.name, p.pin, maxPin)
		}
		if other, ok := seen[p.pin]; ok {
			return fmt.Errorf("%s and %s share pin %d", other, p.name, p.pin)
		}
		seen[p.pin] = p.name
	}
	return nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes. Invalid reloads are reported through onError and otherwise
// ignored. Watch is a no-op when no config file is in use.
func Watch(v *viper.Viper, onChange func(Config), onError func(error)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := fromViper(v)
		if err != nil {
			onError(fmt.Errorf("reload %s: %w", e.Name, err))
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
