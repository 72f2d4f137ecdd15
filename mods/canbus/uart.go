package canbus

import (
	"errors"
	"fmt"
)

// UART-style sensor packet: [0xAA] [V_H] [V_L] [TEMP] [CHECKSUM]
// where CHECKSUM = (0xAA + V_H + V_L + TEMP) & 0xFF.
const (
	SensorPacketSize = 5
	SensorSyncByte   = 0xAA
)

var (
	ErrBadSync     = errors.New("sensor packet sync byte error")
	ErrBadChecksum = errors.New("sensor packet checksum mismatch")
)

// SensorReading is one raw reading from the battery sensor, before the
// gateway attaches a status code.
type SensorReading struct {
	Voltage uint16 // millivolts
	Temp    uint8  // °C
}

func EncodeSensorPacket(r SensorReading) []byte {
	hi := byte(r.Voltage >> 8)
	lo := byte(r.Voltage)
	return []byte{
		SensorSyncByte,
		hi,
		lo,
		r.Temp,
		(SensorSyncByte + hi + lo + r.Temp) & 0xFF,
	}
}

func DecodeSensorPacket(buf []byte) (SensorReading, error) {
	if len(buf) != SensorPacketSize {
		return SensorReading{}, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(buf))
	}
	if buf[0] != SensorSyncByte {
		return SensorReading{}, fmt.Errorf("%w: 0x%02X", ErrBadSync, buf[0])
	}
	if cs := (SensorSyncByte + buf[1] + buf[2] + buf[3]) & 0xFF; cs != buf[4] {
		return SensorReading{}, fmt.Errorf("%w: got 0x%02X want 0x%02X", ErrBadChecksum, buf[4], cs)
	}
	return SensorReading{
		Voltage: uint16(buf[1])<<8 | uint16(buf[2]),
		Temp:    buf[3],
	}, nil
}
