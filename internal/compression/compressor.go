package compression

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"examphoto/internal/common"
)

// Step sizes for bound adjustment. Near the ends of the quality range the
// bounds move by one so the search can still reach the extremes.
const (
	coarseStep     = 2
	fineStep       = 1
	fineBelowLimit = 20
	fineAboveLimit = 80

	// heuristicRatio is the assumed compressed-to-source size ratio used for
	// the initial quality guess.
	heuristicRatio = 0.03
)

// Compressor searches for the JPEG quality whose output size is closest to a
// byte target. It keeps no state between calls.
type Compressor struct {
	encoder Encoder
	opts    Options
	logger  *slog.Logger
}

// NewCompressor creates a new compressor instance
func NewCompressor(encoder Encoder, opts Options, logger *slog.Logger) *Compressor {
	if encoder == nil {
		encoder = NewJPEGEncoder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{
		encoder: encoder,
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Options returns the effective search options.
func (c *Compressor) Options() Options {
	return c.opts
}

// InitialQuality estimates a starting quality from the target and the source
// file size, clamped to [MinInitialQuality, HighQuality].
func (c *Compressor) InitialQuality(targetBytes int, inputSizeBytes int64) int {
	inputKB := c.opts.AssumedInputKB
	if inputSizeBytes > 0 {
		inputKB = float64(inputSizeBytes) / common.BytesPerKB
	}

	estimate := int(100 * float64(targetBytes) / (inputKB * heuristicRatio * common.BytesPerKB))
	return clamp(estimate, c.opts.MinInitialQuality, c.opts.HighQuality)
}

// Compress encodes img repeatedly, bisecting on quality, and returns the
// attempt whose size is closest to target.Bytes. Missing the tolerance is not
// an error; the best attempt is always returned. It fails with
// ErrInvalidTarget before encoding anything, or ErrSizeUnreachable when every
// attempt failed.
func (c *Compressor) Compress(ctx context.Context, img image.Image, target Target) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	low, high := c.opts.LowQuality, c.opts.HighQuality
	quality := c.InitialQuality(target.Bytes, target.InputSizeBytes)

	result := &Result{}
	var best []byte
	bestDiff := -1
	var lastErr error

	for i := 0; i < c.opts.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		quality = clamp(quality, MinQuality, MaxQuality)
		attempt := Attempt{Quality: quality}

		data, err := c.encoder.Encode(img, quality, target.DPI)
		if err != nil {
			attempt.Err = err
			attempt.Low, attempt.High = low, high
			result.Attempts = append(result.Attempts, attempt)
			lastErr = err
			c.logger.Warn("Encode attempt failed", "attempt", i+1, "quality", quality, "error", err)
			continue
		}

		size := len(data)
		diff := absInt(size - target.Bytes)
		attempt.Size, attempt.Diff = size, diff

		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = data, diff
			result.Quality, result.Size = quality, size
		}

		if diff <= c.opts.ToleranceBytes {
			attempt.Low, attempt.High = low, high
			result.Attempts = append(result.Attempts, attempt)
			c.logger.Debug("Encode attempt within tolerance", "attempt", i+1, "quality", quality, "size", size, "target", target.Bytes)
			break
		}

		previous := quality
		low, high = nextBounds(low, high, quality, size > target.Bytes)
		if low < high {
			quality = (low + high) / 2
		}
		attempt.Low, attempt.High = low, high
		result.Attempts = append(result.Attempts, attempt)

		c.logger.Debug("Encode attempt",
			"attempt", i+1,
			"quality", previous,
			"size", size,
			"target", target.Bytes,
			"low", low,
			"high", high)

		if i == c.opts.MaxAttempts-1 {
			if size < target.Bytes && quality < MaxQuality {
				quality++
			}
			break
		}

		// Bounds have met and the encoder is deterministic, so another pass at
		// the same quality would reproduce this attempt.
		if low >= high {
			break
		}
	}

	result.NextQuality = clamp(quality, MinQuality, MaxQuality)

	if best == nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", common.ErrSizeUnreachable, len(result.Attempts), lastErr)
	}

	result.Data = best
	c.logger.Debug("Size search finished",
		"quality", result.Quality,
		"size", result.Size,
		"target", target.Bytes,
		"attempts", len(result.Attempts))
	return result, nil
}

// nextBounds narrows [low, high] after an attempt at quality. The returned
// bounds never cross: a move past the opposite bound stops at it.
func nextBounds(low, high, quality int, tooLarge bool) (int, int) {
	if tooLarge {
		step := coarseStep
		if quality <= fineBelowLimit {
			step = fineStep
		}
		high = max(quality-step, low)
	} else {
		step := coarseStep
		if quality >= fineAboveLimit {
			step = fineStep
		}
		low = min(quality+step, high)
	}
	return low, high
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
