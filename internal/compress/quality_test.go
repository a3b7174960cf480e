package compress

import "testing"

const mib = 1024 * 1024

func TestSelectQuality(t *testing.T) {
	tests := []struct {
		name string
		base int
		size int64
		want int
	}{
		{"Small file keeps base", 30, 2 * mib, 30},
		{"Exactly 5 MiB keeps base", 30, 5 * mib, 30},
		{"Just over 5 MiB", 30, 5*mib + 1, 20},
		{"Exactly 20 MiB is medium", 30, 20 * mib, 20},
		{"Just over 20 MiB", 30, 20*mib + 1, 10},
		{"25 MiB", 30, 25 * mib, 10},
		{"Clamped at minimum", 10, 25 * mib, 5},
		{"Low base small file clamps up", 1, 0, 5},
		{"Max base", 100, 0, 100},
		{"Max base medium", 100, 6 * mib, 90},
		{"Zero size", 50, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectQuality(tt.base, tt.size); got != tt.want {
				t.Errorf("SelectQuality(%d, %d) = %d, want %d", tt.base, tt.size, got, tt.want)
			}
		})
	}
}

func TestSelectQuality_RangeAndMonotonic(t *testing.T) {
	sizes := []int64{0, 1, 5 * mib, 5*mib + 1, 10 * mib, 20 * mib, 20*mib + 1, 100 * mib}

	for base := 1; base <= 100; base++ {
		prev := MaxQuality + 1
		for _, size := range sizes {
			q := SelectQuality(base, size)
			if q < MinQuality || q > MaxQuality {
				t.Fatalf("SelectQuality(%d, %d) = %d, outside [%d, %d]", base, size, q, MinQuality, MaxQuality)
			}
			if q > prev {
				t.Fatalf("SelectQuality(%d, %d) = %d increased from %d", base, size, q, prev)
			}
			prev = q
		}

		if got, want := SelectQuality(base, 5*mib), clamp(base, MinQuality, MaxQuality); got != want {
			t.Errorf("SelectQuality(%d, 5MiB) = %d, want %d", base, got, want)
		}
	}
}
