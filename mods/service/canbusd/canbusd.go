// Package canbusd is the virtual CAN bus binding: a thin UDP datagram
// listener that hands raw frames to the monitoring session. It knows
// nothing about the frame layout.
package canbusd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
)

type Option func(s *Listener)

// WithListenAddress sets the UDP address to bind, e.g. "127.0.0.1:5000".
func WithListenAddress(addr string) Option {
	return func(s *Listener) {
		s.listenAddress = addr
	}
}

// WithMaxFrameSize sets the receive buffer size per datagram.
func WithMaxFrameSize(size int) Option {
	return func(s *Listener) {
		s.maxFrameSize = size
	}
}

func New(options ...Option) (*Listener, error) {
	s := &Listener{
		log:           logging.GetLog("canbusd"),
		listenAddress: "127.0.0.1:5000",
		maxFrameSize:  1024,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

type Listener struct {
	log           logging.Log
	listenAddress string
	maxFrameSize  int

	conn *net.UDPConn
}

func (s *Listener) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.listenAddress)
	if err != nil {
		return fmt.Errorf("canbus listen address: %w", err)
	}
	s.conn, err = net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("canbus listen: %w", err)
	}
	s.log.Infof("CAN Listen udp %s", s.conn.LocalAddr().String())
	return nil
}

func (s *Listener) Stop() {
	if s.conn != nil {
		s.conn.Close()
		s.log.Info("CAN Stop")
	}
}

// Addr returns the bound address, nil before Start.
func (s *Listener) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Recv blocks for the next datagram. Implements monitor.FrameSource.
func (s *Listener) Recv(ctx context.Context) ([]byte, error) {
	data, _, err := s.RecvFrom(ctx)
	return data, err
}

// RecvFrom blocks until a datagram arrives, the context is canceled or
// the listener is stopped. The read deadline is polled so cancellation
// is observed without tearing down the socket.
func (s *Listener) RecvFrom(ctx context.Context) ([]byte, net.Addr, error) {
	if s.conn == nil {
		return nil, nil, errors.New("canbus listener is not started")
	}
	buf := make([]byte, s.maxFrameSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		s.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) && ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, err
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		return data, from, nil
	}
}
