package compression

import (
	"examphoto/internal/common"
)

// Options tunes the quality search.
type Options struct {
	LowQuality        int     `json:"low_quality" yaml:"low_quality"`
	HighQuality       int     `json:"high_quality" yaml:"high_quality"`
	MinInitialQuality int     `json:"min_initial_quality" yaml:"min_initial_quality"`
	ToleranceBytes    int     `json:"tolerance_bytes" yaml:"tolerance_bytes"`
	MaxAttempts       int     `json:"max_attempts" yaml:"max_attempts"`
	AssumedInputKB    float64 `json:"assumed_input_kb" yaml:"assumed_input_kb"`
}

// DefaultOptions returns default search options
func DefaultOptions() Options {
	return Options{
		LowQuality:        10,
		HighQuality:       100,
		MinInitialQuality: 80,
		ToleranceBytes:    512,
		MaxAttempts:       10,
		AssumedInputKB:    1500,
	}
}

// withDefaults fills every unset or out-of-range field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LowQuality < MinQuality || o.LowQuality > MaxQuality {
		o.LowQuality = d.LowQuality
	}
	if o.HighQuality < MinQuality || o.HighQuality > MaxQuality {
		o.HighQuality = d.HighQuality
	}
	if o.LowQuality > o.HighQuality {
		o.LowQuality, o.HighQuality = d.LowQuality, d.HighQuality
	}
	if o.MinInitialQuality < MinQuality || o.MinInitialQuality > MaxQuality {
		o.MinInitialQuality = d.MinInitialQuality
	}
	if o.ToleranceBytes < 0 {
		o.ToleranceBytes = d.ToleranceBytes
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.AssumedInputKB <= 0 {
		o.AssumedInputKB = d.AssumedInputKB
	}
	return o
}

// Target describes the size a conversion is aiming for.
type Target struct {
	Bytes          int
	MinBytes       int
	MaxBytes       int
	DPI            int
	InputSizeBytes int64 // source file size; 0 when unknown
}

// Validate rejects targets that are non-positive or outside [MinBytes, MaxBytes].
func (t Target) Validate() error {
	if t.Bytes <= 0 || t.Bytes < t.MinBytes || t.Bytes > t.MaxBytes {
		return &common.TargetError{Bytes: t.Bytes, MinBytes: t.MinBytes, MaxBytes: t.MaxBytes}
	}
	return nil
}

// Attempt records one encode pass of the search.
type Attempt struct {
	Quality int   `json:"quality"`
	Size    int   `json:"size"`
	Diff    int   `json:"diff"`
	Low     int   `json:"low"`
	High    int   `json:"high"`
	Err     error `json:"-"`
}

// Failed reports whether the encoder returned no usable buffer.
func (a Attempt) Failed() bool {
	return a.Err != nil
}

// Result is the best candidate found by the search.
type Result struct {
	Data     []byte    `json:"-"`
	Quality  int       `json:"quality"`
	Size     int       `json:"size"`
	Attempts []Attempt `json:"attempts"`
	// NextQuality is where the search would continue with more budget.
	NextQuality int `json:"next_quality"`
}

// Diff is the absolute distance between the result size and target bytes.
func (r *Result) Diff(target int) int {
	return absInt(r.Size - target)
}
