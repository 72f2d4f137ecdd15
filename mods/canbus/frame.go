// Package canbus implements the wire formats of the virtual CAN bus:
// the 13-byte CAN-like telemetry frame carried over UDP and the 5-byte
// UART-style packet emitted by the battery sensor.
package canbus

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// FrameSize is the fixed length of a CAN-like frame on the wire.
	FrameSize = 13
	// PayloadSize is the data length of a frame.
	PayloadSize = 8

	// DefaultCANID is the identifier the gateway assigns to battery frames.
	DefaultCANID = 0x100
)

// Status codes carried in payload byte 3. The gateway owns this logic,
// the monitor only reports it.
const (
	StatusOK           = 0x00
	StatusWarnLowVolt  = 0x01
	StatusCritTemp     = 0x02
)

var ErrMalformedFrame = errors.New("malformed CAN frame")

// TelemetrySample is one decoded battery telemetry frame.
type TelemetrySample struct {
	ID      uint32
	Voltage uint16 // millivolts
	Temp    uint8  // °C
	Status  uint8
}

// DecodeFrame decodes a 13-byte frame:
//
//	uint32 LE  CAN id
//	uint8      DLC
//	[8]byte    payload; [0][1] voltage big-endian, [2] temp, [3] status,
//	           [4..7] reserved
//
// Any other buffer length fails with ErrMalformedFrame.
func DecodeFrame(buf []byte) (TelemetrySample, error) {
	if len(buf) != FrameSize {
		return TelemetrySample{}, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(buf))
	}
	payload := buf[5:]
	return TelemetrySample{
		ID:      binary.LittleEndian.Uint32(buf[0:4]),
		Voltage: uint16(payload[0])<<8 | uint16(payload[1]),
		Temp:    payload[2],
		Status:  payload[3],
	}, nil
}

// EncodeFrame packs a sample into the 13-byte wire form with DLC 8.
func EncodeFrame(sample TelemetrySample) []byte {
	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], sample.ID)
	buf[4] = PayloadSize
	buf[5] = byte(sample.Voltage >> 8)
	buf[6] = byte(sample.Voltage)
	buf[7] = sample.Temp
	buf[8] = sample.Status
	return buf
}

// StatusOf applies the gateway's deterministic safety rules.
func StatusOf(voltage uint16, temp uint8) uint8 {
	if temp > 60 {
		return StatusCritTemp
	}
	if voltage < 3100 {
		return StatusWarnLowVolt
	}
	return StatusOK
}
