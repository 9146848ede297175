package pipeline

import (
	"math"
	"time"
)

// FadeSteps is the number of frame intervals a fade of length d takes at fps.
func FadeSteps(d time.Duration, fps float64) int {
	if d <= 0 || fps <= 0 {
		return 0
	}
	steps := int(math.Round(d.Seconds() * fps))
	if steps < 1 {
		steps = 1
	}
	return steps
}

// FadeOpacity is the image opacity at step of steps for a fade-in.
// Step 0 is fully transparent and the last step fully opaque.
func FadeOpacity(step, steps int) uint8 {
	if steps <= 0 || step >= steps {
		return 255
	}
	if step <= 0 {
		return 0
	}
	return uint8(255 * step / steps)
}

// ScaleFades shrinks fadeIn and fadeOut proportionally when the clip is too
// short to hold both. An unknown total leaves them unchanged.
func ScaleFades(total, fadeIn, fadeOut time.Duration) (time.Duration, time.Duration) {
	sum := fadeIn + fadeOut
	if total <= 0 || sum <= total || sum <= 0 {
		return fadeIn, fadeOut
	}
	in := time.Duration(float64(total) * float64(fadeIn) / float64(sum))
	return in, total - in
}

// FadeEnvelope is the alpha of the black overlay drawn over a video frame at
// position: opaque at the start, clearing over fadeIn, transparent in the
// body and closing again over the last fadeOut. Without a known total only
// the fade-in applies.
func FadeEnvelope(position, total, fadeIn, fadeOut time.Duration) uint8 {
	fadeIn, fadeOut = ScaleFades(total, fadeIn, fadeOut)
	if position < 0 {
		position = 0
	}

	overlay := 0.0
	if fadeIn > 0 && position < fadeIn {
		overlay = 1 - float64(position)/float64(fadeIn)
	}
	if total > 0 && fadeOut > 0 {
		remaining := total - position
		if remaining < fadeOut {
			out := 1 - float64(remaining)/float64(fadeOut)
			overlay = math.Max(overlay, out)
		}
	}

	overlay = math.Min(math.Max(overlay, 0), 1)
	return uint8(math.Round(overlay * 255))
}
