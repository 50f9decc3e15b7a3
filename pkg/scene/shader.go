package scene

// Material is a renderable surface description: a shader program plus its
// uniform values. The engine is renderer-agnostic; a GPU host compiles Shader
// and uploads Uniforms, the terminal viewer and the snapshot exporter read
// the same uniforms to approximate the effect.
//
// Single-threaded contract: uniforms are written by clock updaters on the
// frame loop and read by the render pass on the same loop, so no locking.
type Material struct {
	Shader   string
	Uniforms map[string]float32
}

// Uniform names shared by the shaders below.
const (
	UniformTime      = "uTime"
	UniformTwinkleHz = "uTwinkleHz"
	UniformRimPower  = "uRimPower"
	UniformOpacity   = "uOpacity"
)

// starShader is the stylized per-pixel node shader: a fresnel rim glow plus a
// continuous twinkle whose frequency encodes the paper's age (uTwinkleHz is
// set once per node by the synthesizer).
const starShader = `
uniform float uTime;
uniform float uTwinkleHz;
uniform float uRimPower;
uniform float uOpacity;
uniform vec3 uColor;
varying vec3 vNormal;
varying vec3 vViewDir;

void main() {
    float rim = pow(1.0 - abs(dot(normalize(vNormal), normalize(vViewDir))), uRimPower);
    float twinkle = 0.75 + 0.25 * sin(uTime * uTwinkleHz * 6.2831853);
    vec3 color = uColor * twinkle + vec3(rim);
    gl_FragColor = vec4(color, uOpacity);
}
`

// nebulaShader shimmers the cluster particle clouds; per-point alpha comes in
// through the vertex attribute, time drives a slow brightness drift.
const nebulaShader = `
uniform float uTime;
uniform vec3 uColor;
varying float vAlpha;

void main() {
    float d = length(gl_PointCoord - vec2(0.5));
    if (d > 0.5) discard;
    float shimmer = 0.85 + 0.15 * sin(uTime * 0.8 + vAlpha * 12.0);
    float falloff = 1.0 - d * 2.0;
    gl_FragColor = vec4(uColor * shimmer, vAlpha * falloff);
}
`

// NewStarMaterial builds the star-mode material for a node. twinkleHz is
// derived from publication year by the synthesizer: older papers twinkle
// slower, a subtle visual age cue.
func NewStarMaterial(twinkleHz, opacity float32) *Material {
	return &Material{
		Shader: starShader,
		Uniforms: map[string]float32{
			UniformTime:      0,
			UniformTwinkleHz: twinkleHz,
			UniformRimPower:  2.5,
			UniformOpacity:   opacity,
		},
	}
}

// NewNebulaMaterial builds the shimmer material for a cluster particle cloud.
func NewNebulaMaterial() *Material {
	return &Material{
		Shader: nebulaShader,
		Uniforms: map[string]float32{
			UniformTime: 0,
		},
	}
}

// SetTime writes the shared clock's elapsed seconds into the material.
func (m *Material) SetTime(seconds float32) {
	m.Uniforms[UniformTime] = seconds
}
