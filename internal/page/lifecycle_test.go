package page

import "testing"

func TestState_CanSubmit(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Idle, true},
		{FileSelected, true},
		{Submitting, false},
		{ResultReady, false},
		{Failed, false},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.CanSubmit(); got != tt.want {
				t.Fatalf("CanSubmit() = %v, want %v", got, tt.want)
			}
		})
	}
}
