package link

import (
	"errors"
	"testing"
	"time"
)

func TestChannelPair_Delivers(t *testing.T) {
	a, b := NewChannelPair(0, 1)
	defer a.Close()
	defer b.Close()

	a.Send(0x02)

	select {
	case p := <-b.Inbound():
		if len(p) != 1 || p[0] != 0x02 {
			t.Fatalf("payload = %v, want [0x02]", p)
		}
	case <-time.After(time.Second):
		t.Fatalf("datagram not delivered")
	}

	select {
	case r := <-a.Results():
		if r.Err != nil {
			t.Fatalf("result err = %v, want nil", r.Err)
		}
		if r.Payload != 0x02 {
			t.Fatalf("result payload = 0x%02x, want 0x02", r.Payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("no send result")
	}
}

func TestChannelPair_ForcedFailure(t *testing.T) {
	a, b := NewChannelPair(0, 1)
	defer a.Close()
	defer b.Close()

	a.FailNext(1)
	a.Send(0x03)

	select {
	case r := <-a.Results():
		if !errors.Is(r.Err, ErrSendFailed) {
			t.Fatalf("result err = %v, want ErrSendFailed", r.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("no send result")
	}

	select {
	case p := <-b.Inbound():
		t.Fatalf("failed send delivered payload %v", p)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelPair_SilentLoss(t *testing.T) {
	a, b := NewChannelPair(1.0, 1) // every datagram lost
	defer a.Close()
	defer b.Close()

	a.Send(0x01)

	select {
	case r := <-a.Results():
		if r.Err != nil {
			t.Fatalf("lost send should still report ok, got %v", r.Err)
		}
	case <-time.After(time.Second):
		t.Fatalf("no send result")
	}

	select {
	case p := <-b.Inbound():
		t.Fatalf("lossRate=1 delivered payload %v", p)
	case <-time.After(50 * time.Millisecond):
	}
}
