package sensor

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Senseair S8 Modbus layout (input registers).
const (
	S8SlaveID     = 0xFE // "any address"
	s8RegStatus   = 0    // IR1 meter status
	s8RegCO2      = 3    // IR4 space CO2
	s8RegCount    = s8RegCO2 - s8RegStatus + 1
	s8BaudRate    = 9600
	s8ReadTimeout = 2 * time.Second
)

// DefaultS8Port is the primary UART on a Raspberry Pi.
const DefaultS8Port = "/dev/serial0"

// registerReader is the part of modbus.Client the S8 driver uses.
type registerReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// SenseairS8 reads CO2 from a Senseair S8 over Modbus RTU.
type SenseairS8 struct {
	handler *modbus.RTUClientHandler
	client  registerReader
}

// NewSenseairS8 opens the serial port and connects to the sensor.
func NewSenseairS8(port string) (*SenseairS8, error) {
	h := modbus.NewRTUClientHandler(port)
	h.BaudRate = s8BaudRate
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = S8SlaveID
	h.Timeout = s8ReadTimeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("open s8 port %s: %w", port, err)
	}

	return &SenseairS8{handler: h, client: modbus.NewClient(h)}, nil
}

// CO2 reads the meter status and CO2 registers in one request.
// A non-zero meter status is reported as an error.
func (s *SenseairS8) CO2() (int, error) {
	data, err := s.client.ReadInputRegisters(s8RegStatus, s8RegCount)
	if err != nil {
		return 0, fmt.Errorf("s8 read registers: %w", err)
	}
	if len(data) != 2*s8RegCount {
		return 0, fmt.Errorf("s8 short response: got %d bytes, want %d", len(data), 2*s8RegCount)
	}

	if status := binary.BigEndian.Uint16(data[0:2]); status != 0 {
		return 0, fmt.Errorf("s8 meter status 0x%04x", status)
	}

	off := 2 * (s8RegCO2 - s8RegStatus)
	return int(binary.BigEndian.Uint16(data[off : off+2])), nil
}

// Close closes the serial port.
func (s *SenseairS8) Close() error {
	if s.handler == nil {
		return nil
	}
	return s.handler.Close()
}
