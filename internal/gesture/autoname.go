package gesture

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ayusman/isyarat/internal/detector"
)

var (
	fingerTips = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerPIPs = [5]int{detector.ThumbIP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// AutoName derives a name from a normalized frame by counting extended
// fingers. A finger is extended when its tip is above (smaller y than) its
// middle joint. Unusable input falls back to a timestamp name.
func AutoName(points []detector.Point) string {
	return autoName(points, time.Now())
}

func autoName(points []detector.Point, now time.Time) string {
	extended, ok := countExtended(points)
	if !ok {
		return "gesture_" + strconv.FormatInt(now.UnixMilli(), 36)
	}

	switch extended {
	case len(fingerTips):
		return "open_palm"
	case 0:
		return "fist"
	default:
		return fmt.Sprintf("%d_fingers", extended)
	}
}

func countExtended(points []detector.Point) (int, bool) {
	if len(points) < detector.NumLandmarks {
		return 0, false
	}

	n := 0
	for i := range fingerTips {
		tip, pip := points[fingerTips[i]], points[fingerPIPs[i]]
		if math.IsNaN(tip.Y) || math.IsNaN(pip.Y) {
			return 0, false
		}
		if tip.Y < pip.Y {
			n++
		}
	}
	return n, true
}
