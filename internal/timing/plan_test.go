package timing

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
)

func records(markers ...int64) []session.Record {
	out := make([]session.Record, len(markers))
	for i, m := range markers {
		out[i] = session.Record{SessionID: "s1", Marker: m, Payload: []byte{byte('a' + i)}}
	}
	return out
}

func assertWaits(t *testing.T, got, want []time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d waits %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWaits_Relative(t *testing.T) {
	got, err := Waits([]int64{100, 200}, ModeRelative, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	assertWaits(t, got, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond})
}

func TestWaits_RelativeFirstRecordDelayed(t *testing.T) {
	got, err := Waits([]int64{1500, 0}, ModeRelative, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	assertWaits(t, got, []time.Duration{1500 * time.Millisecond, 0})
}

func TestWaits_RelativeSpeedup(t *testing.T) {
	tests := []struct {
		name    string
		speedup float64
		want    []time.Duration
	}{
		{"double", 2.0, []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond}},
		{"half", 0.5, []time.Duration{0, time.Second, 2 * time.Second}},
		{"realtime", 1.0, []time.Duration{0, 500 * time.Millisecond, time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Waits([]int64{0, 500, 1000}, ModeRelative, tt.speedup)
			if err != nil {
				t.Fatal(err)
			}
			assertWaits(t, got, tt.want)
		})
	}
}

func TestWaits_RelativeNegativeDelayClamped(t *testing.T) {
	got, err := Waits([]int64{-40, 40}, ModeRelative, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	assertWaits(t, got, []time.Duration{0, 40 * time.Millisecond})
}

func TestWaits_AbsoluteNonMonotonicClamped(t *testing.T) {
	const ts = int64(1_600_000_000)
	got, err := Waits([]int64{ts, ts + 5, ts + 3}, ModeAbsolute, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	assertWaits(t, got, []time.Duration{0, 2500 * time.Millisecond, 0})
}

func TestWaits_AbsoluteGapIsToImmediatePredecessor(t *testing.T) {
	const ts = int64(1_600_000_000)
	got, err := Waits([]int64{ts, ts + 5, ts + 3, ts + 4}, ModeAbsolute, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	assertWaits(t, got, []time.Duration{0, 5 * time.Second, 0, time.Second})
}

func TestWaits_NeverNegative(t *testing.T) {
	markers := []int64{10, -3, 7, 7, 2, 900, -1000, 5}
	for _, mode := range []Mode{ModeRelative, ModeAbsolute} {
		for _, speedup := range []float64{0.1, 1, 3, 1000} {
			waits, err := Waits(markers, mode, speedup)
			if err != nil {
				t.Fatal(err)
			}
			for i, w := range waits {
				if w < 0 {
					t.Errorf("mode=%s speedup=%v wait[%d] = %v, want >= 0", mode, speedup, i, w)
				}
			}
		}
	}
}

func TestWaits_ExtremeValuesSaturate(t *testing.T) {
	tests := []struct {
		name    string
		markers []int64
		mode    Mode
		speedup float64
		want    []time.Duration
	}{
		{"tiny speedup", []int64{10000}, ModeRelative, 1e-9, []time.Duration{MaxDuration}},
		{"smallest speedup", []int64{1}, ModeRelative, math.SmallestNonzeroFloat64, []time.Duration{MaxDuration}},
		{"huge relative marker", []int64{2e13}, ModeRelative, 1, []time.Duration{MaxDuration}},
		{"max relative marker", []int64{math.MaxInt64}, ModeRelative, 1e6, []time.Duration{MaxDuration}},
		{"huge absolute gap", []int64{0, 1e10}, ModeAbsolute, 1, []time.Duration{0, MaxDuration}},
		{"gap across int64 range", []int64{math.MinInt64, math.MaxInt64}, ModeAbsolute, 1, []time.Duration{0, MaxDuration}},
		{"backwards across int64 range", []int64{math.MaxInt64, math.MinInt64}, ModeAbsolute, 1, []time.Duration{0, 0}},
		{"huge but representable", []int64{9e9}, ModeRelative, 1, []time.Duration{9e9 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waits, err := Waits(tt.markers, tt.mode, tt.speedup)
			if err != nil {
				t.Fatal(err)
			}
			assertWaits(t, waits, tt.want)
		})
	}
}

func TestPlan_TotalSaturates(t *testing.T) {
	plan, err := Build(records(0, 1e10, 2e10), ModeAbsolute, 1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := plan.Total(); got != MaxDuration {
		t.Errorf("Total() = %v, want %v", got, MaxDuration)
	}
}

func TestWaits_InvalidSpeedup(t *testing.T) {
	for _, speedup := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := Waits([]int64{1}, ModeRelative, speedup)
		if !apperr.HasCode(err, apperr.CodeInvalidSpeedup) {
			t.Errorf("Waits(speedup=%v) error = %v, want %s", speedup, err, apperr.CodeInvalidSpeedup)
		}
	}
}

func TestWaits_UnknownMode(t *testing.T) {
	_, err := Waits([]int64{1}, Mode("guess"), 1)
	if !apperr.HasCode(err, apperr.CodeInvalidConfig) {
		t.Errorf("Waits() error = %v, want %s", err, apperr.CodeInvalidConfig)
	}
}

func TestWaits_Empty(t *testing.T) {
	got, err := Waits(nil, ModeAbsolute, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no waits", got)
	}
}

func TestBuild_KeepsOrderAndPayload(t *testing.T) {
	plan, err := Build(records(0, 500, 1000), ModeRelative, 2.0, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 3 {
		t.Fatalf("len(plan) = %d, want 3", len(plan))
	}
	for i, want := range []string{"a", "b", "c"} {
		if !bytes.Equal(plan[i].Payload, []byte(want)) {
			t.Errorf("plan[%d].Payload = %q, want %q", i, plan[i].Payload, want)
		}
	}
	if got, want := plan.Total(), 750*time.Millisecond; got != want {
		t.Errorf("Total() = %v, want %v", got, want)
	}
	if got := plan.Bytes(); got != 3 {
		t.Errorf("Bytes() = %d, want 3", got)
	}
}

func TestBuild_MaxWaitCapsIdleGaps(t *testing.T) {
	plan, err := Build(records(100, 60_000, 300), ModeRelative, 1.0, Options{MaxWait: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{100 * time.Millisecond, 2 * time.Second, 300 * time.Millisecond}
	for i := range want {
		if plan[i].Wait != want[i] {
			t.Errorf("plan[%d].Wait = %v, want %v", i, plan[i].Wait, want[i])
		}
	}
}

func TestBuild_InvalidSpeedupBuildsNothing(t *testing.T) {
	plan, err := Build(records(1, 2), ModeRelative, 0, Options{})
	if !apperr.HasCode(err, apperr.CodeInvalidSpeedup) {
		t.Fatalf("Build() error = %v, want %s", err, apperr.CodeInvalidSpeedup)
	}
	if plan != nil {
		t.Errorf("Build() plan = %v, want nil", plan)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"relative", ModeRelative, false},
		{" Absolute ", ModeAbsolute, false},
		{"", "", true},
		{"delay", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
