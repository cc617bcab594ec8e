package input

import (
	"testing"

	"aeroclash/arena/internal/state"
)

func TestSetControlsLastWriteWins(t *testing.T) {
	gateway := NewGateway()
	gateway.Track("pilot")

	gateway.SetControls("pilot", state.Controls{Pitch: 0.2})
	gateway.SetControls("pilot", state.Controls{Pitch: -0.8, Fire: true})

	got := gateway.Controls("pilot")
	if got.Pitch != -0.8 || !got.Fire {
		t.Fatalf("latest write should win, got %+v", got)
	}
}

func TestSetControlsUnknownSessionIsNoOp(t *testing.T) {
	gateway := NewGateway()
	gateway.SetControls("ghost", state.Controls{Boost: true})
	if got := gateway.Controls("ghost"); got != (state.Controls{}) {
		t.Fatalf("unknown session must stay neutral, got %+v", got)
	}
}

func TestControlsDefaultIsNeutral(t *testing.T) {
	gateway := NewGateway()
	gateway.Track("silent")
	if got := gateway.Controls("silent"); got != (state.Controls{}) {
		t.Fatalf("session with no frames should read neutral, got %+v", got)
	}
}

func TestForgetDropsStagedVector(t *testing.T) {
	gateway := NewGateway()
	gateway.Track("pilot")
	gateway.SetControls("pilot", state.Controls{Boost: true})
	gateway.Forget("pilot")
	gateway.SetControls("pilot", state.Controls{Fire: true})
	if got := gateway.Controls("pilot"); got != (state.Controls{}) {
		t.Fatalf("forgotten session must reject writes, got %+v", got)
	}
}

func TestSetControlsSanitizes(t *testing.T) {
	gateway := NewGateway()
	gateway.Track("pilot")
	gateway.SetControls("pilot", state.Controls{Pitch: 5, Roll: -3})
	got := gateway.Controls("pilot")
	if got.Pitch != 1 || got.Roll != -1 {
		t.Fatalf("axes must be clamped, got %+v", got)
	}
}
