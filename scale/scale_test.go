package scale

import "testing"

func TestLinearOf(t *testing.T) {
	s := NewLinear([]float64{0, 10})
	if got := s.Of(0); got != 0 {
		t.Errorf("Of(0) = %v, want 0", got)
	}
	if got := s.Of(10); got != 1 {
		t.Errorf("Of(10) = %v, want 1", got)
	}
	if got := s.Of(5); got != 0.5 {
		t.Errorf("Of(5) = %v, want 0.5", got)
	}
}

func TestLogOf(t *testing.T) {
	s := NewLog([]float64{1, 100}, 10)
	if got := s.Of(1); got != 0 {
		t.Errorf("Of(1) = %v, want 0", got)
	}
	if got := s.Of(100); got != 1 {
		t.Errorf("Of(100) = %v, want 1", got)
	}
}

func TestPowerOf(t *testing.T) {
	s := NewPower([]float64{0, 10}, 2)
	if got := s.Of(0); got != 0 {
		t.Errorf("Of(0) = %v, want 0", got)
	}
	if got := s.Of(10); got != 1 {
		t.Errorf("Of(10) = %v, want 1", got)
	}
}

func TestOutputScaleCrop(t *testing.T) {
	s := NewOutputScale(0, 40)
	if _, ok := s.Of(-0.5); ok {
		t.Errorf("Of(-0.5) with default Crop should report not-ok")
	}
	if got, ok := s.Of(0.5); !ok || got != 20 {
		t.Errorf("Of(0.5) = %v, %v, want 20, true", got, ok)
	}
}

func TestOutputScaleClamp(t *testing.T) {
	s := NewOutputScale(0, 40)
	s.Clamp()
	if got, ok := s.Of(-0.5); !ok || got != 0 {
		t.Errorf("Of(-0.5) after Clamp() = %v, %v, want 0, true", got, ok)
	}
	if got, ok := s.Of(1.5); !ok || got != 40 {
		t.Errorf("Of(1.5) after Clamp() = %v, %v, want 40, true", got, ok)
	}
}
