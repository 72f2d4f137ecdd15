package canbus_test

import (
	"testing"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	sample := canbus.TelemetrySample{
		ID:      0x1A,
		Voltage: 3700,
		Temp:    25,
		Status:  canbus.StatusOK,
	}
	buf := canbus.EncodeFrame(sample)
	require.Len(t, buf, canbus.FrameSize)
	require.Equal(t, byte(canbus.PayloadSize), buf[4])

	decoded, err := canbus.DecodeFrame(buf)
	require.NoError(t, err)
	require.Equal(t, sample, decoded)
}

func TestFrameVoltagePacking(t *testing.T) {
	// payload[0..1] pack the voltage big-endian, unlike the LE CAN id
	buf := canbus.EncodeFrame(canbus.TelemetrySample{ID: 0x100, Voltage: 0x0E74})
	require.Equal(t, byte(0x0E), buf[5])
	require.Equal(t, byte(0x74), buf[6])

	decoded, err := canbus.DecodeFrame(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(3700), decoded.Voltage)
}

func TestFrameRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, 5, 12, 14, 64} {
		_, err := canbus.DecodeFrame(make([]byte, n))
		require.ErrorIs(t, err, canbus.ErrMalformedFrame, "length %d", n)
	}
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, uint8(canbus.StatusOK), canbus.StatusOf(3300, 45))
	require.Equal(t, uint8(canbus.StatusCritTemp), canbus.StatusOf(3300, 61))
	require.Equal(t, uint8(canbus.StatusWarnLowVolt), canbus.StatusOf(3099, 45))
	// critical temperature wins over low voltage
	require.Equal(t, uint8(canbus.StatusCritTemp), canbus.StatusOf(100, 70))
}

func TestSensorPacketRoundTrip(t *testing.T) {
	r := canbus.SensorReading{Voltage: 3456, Temp: 45}
	buf := canbus.EncodeSensorPacket(r)
	require.Len(t, buf, canbus.SensorPacketSize)
	require.Equal(t, byte(canbus.SensorSyncByte), buf[0])

	decoded, err := canbus.DecodeSensorPacket(buf)
	require.NoError(t, err)
	require.Equal(t, r, decoded)
}

func TestSensorPacketErrors(t *testing.T) {
	buf := canbus.EncodeSensorPacket(canbus.SensorReading{Voltage: 3456, Temp: 45})

	bad := append([]byte{}, buf...)
	bad[0] = 0x55
	_, err := canbus.DecodeSensorPacket(bad)
	require.ErrorIs(t, err, canbus.ErrBadSync)

	bad = append([]byte{}, buf...)
	bad[4] ^= 0xFF
	_, err = canbus.DecodeSensorPacket(bad)
	require.ErrorIs(t, err, canbus.ErrBadChecksum)

	_, err = canbus.DecodeSensorPacket(buf[:4])
	require.ErrorIs(t, err, canbus.ErrMalformedFrame)
}
