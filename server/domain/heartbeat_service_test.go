package domain

import (
	"context"
	"testing"
	"time"
)

func TestHeartbeatService_SendsPing(t *testing.T) {
	session := NewSession()
	writeCh := make(chan []byte, 4)
	h := NewHeartbeatService(5*time.Millisecond, session, writeCh)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go h.Run(ctx)

	select {
	case data := <-writeCh:
		header, err := ParseHeader(data)
		if err != nil {
			t.Fatalf("ParseHeader failed: %v", err)
		}
		if header.SessionID != session.ID().Bytes() {
			t.Errorf("SessionID mismatch")
		}
		payloadHeader, err := ParsePayloadHeader(data[HeaderSize:])
		if err != nil {
			t.Fatalf("ParsePayloadHeader failed: %v", err)
		}
		if payloadHeader.DataType != DataTypeControl {
			t.Errorf("DataType = %d, want %d", payloadHeader.DataType, DataTypeControl)
		}
		if ControlSubType(payloadHeader.SubType) != ControlSubTypePing {
			t.Errorf("SubType = %d, want ping", payloadHeader.SubType)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ping not sent")
	}
}

func TestHeartbeatService_StopsWhenSessionClosed(t *testing.T) {
	session := NewSession()
	session.Close()
	writeCh := make(chan []byte, 1)
	h := NewHeartbeatService(time.Millisecond, session, writeCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("heartbeat did not stop for closed session")
	}
}
