package scene

import (
	"time"

	"cogentcore.org/core/math32"
)

// DefaultCameraDuration is the fixed interpolation time for every camera
// transition (focus, dolly, reset).
const DefaultCameraDuration = time.Second

// homePosition is the reset-camera pose.
var homePosition = math32.Vec3(0, 0, 300)

// dollyDistance is how close the double-click dolly-in parks the camera from
// its target node.
const dollyDistance = 60.0

// clusterFocusDistance offsets the camera from a cluster centroid along the
// current view axis.
const clusterFocusDistance = 160.0

// Camera holds the engine's camera pose and runs timed transitions. All
// methods are frame-loop-threaded; the transition advances in Update, called
// once per rendered frame.
type Camera struct {
	Position math32.Vector3
	Target   math32.Vector3

	duration time.Duration

	transition *cameraTransition
}

type cameraTransition struct {
	fromPos, toPos math32.Vector3
	fromTgt, toTgt math32.Vector3
	start          time.Time
	duration       time.Duration
	done           func()
}

// NewCamera returns a camera at the home pose.
func NewCamera(duration time.Duration) *Camera {
	if duration <= 0 {
		duration = DefaultCameraDuration
	}
	return &Camera{
		Position: homePosition,
		duration: duration,
	}
}

// Distance returns the camera's distance from the scene origin; the edge
// synthesizer's LOD keys off it.
func (c *Camera) Distance() float64 {
	return float64(c.Position.Length())
}

// ViewDir returns the normalized look direction.
func (c *Camera) ViewDir() math32.Vector3 {
	d := c.Target.Sub(c.Position)
	if d.Length() < 1e-6 {
		return math32.Vec3(0, 0, -1)
	}
	return d.Normal()
}

// Animating reports whether a transition is in flight.
func (c *Camera) Animating() bool {
	return c.transition != nil
}

// FlyTo starts a transition to the given pose over the fixed duration,
// replacing any transition in flight. done (optional) fires on completion.
func (c *Camera) FlyTo(pos, target math32.Vector3, now time.Time, done func()) {
	c.transition = &cameraTransition{
		fromPos:  c.Position,
		toPos:    pos,
		fromTgt:  c.Target,
		toTgt:    target,
		start:    now,
		duration: c.duration,
		done:     done,
	}
}

// FocusNode dollies the camera in toward a node, stopping dollyDistance away
// along the current approach direction.
func (c *Camera) FocusNode(nodePos math32.Vector3, now time.Time, done func()) {
	approach := c.Position.Sub(nodePos)
	if approach.Length() < 1e-6 {
		approach = math32.Vec3(0, 0, 1)
	}
	pos := nodePos.Add(approach.Normal().MulScalar(dollyDistance))
	c.FlyTo(pos, nodePos, now, done)
}

// FocusCluster flies to a cluster centroid, offset back along the view axis.
func (c *Camera) FocusCluster(centroid math32.Vector3, now time.Time, done func()) {
	pos := centroid.Sub(c.ViewDir().MulScalar(clusterFocusDistance))
	c.FlyTo(pos, centroid, now, done)
}

// Reset flies home.
func (c *Camera) Reset(now time.Time, done func()) {
	c.FlyTo(homePosition, math32.Vector3{}, now, done)
}

// Update advances the in-flight transition. Called once per rendered frame.
func (c *Camera) Update(now time.Time) {
	tr := c.transition
	if tr == nil {
		return
	}
	t := float32(now.Sub(tr.start)) / float32(tr.duration)
	if t >= 1 {
		c.Position = tr.toPos
		c.Target = tr.toTgt
		c.transition = nil
		if tr.done != nil {
			tr.done()
		}
		return
	}
	if t < 0 {
		t = 0
	}
	e := easeInOutCubic(t)
	c.Position = tr.fromPos.Lerp(tr.toPos, e)
	c.Target = tr.fromTgt.Lerp(tr.toTgt, e)
}

func easeInOutCubic(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 1 + u*u*u/2
}
