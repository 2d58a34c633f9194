// Package gpucompose implements the Mode B (High-Fidelity) compositor:
// uploads background + subtitle textures, blends with a per-frame
// alpha, and reads back raw RGBA for the encoder pipe.
//
// Grounded on goki.dev/vgpu/v2/vgpu + github.com/goki/vulkan (seen in
// the cogentcore-core reisen example) for device/texture/pipeline
// plumbing, and on the original implementation's renderer.rs for the
// exact per-frame algorithm: upload, active-subtitle lookup, alpha
// computation, premultiplied-alpha blend render pass, async readback.
package gpucompose

import (
	"context"
	"image"

	vk "github.com/goki/vulkan"
	"goki.dev/vgpu/v2/vgpu"

	"github.com/five82/subtitlecast/internal/subtitle"
	"github.com/five82/subtitlecast/internal/timeline"
	"github.com/five82/subtitlecast/internal/xerr"
)

// Renderer owns a GPU device and queue, two textures (background +
// subtitle) of size (w,h), a readback buffer of w*h*4 bytes, and a
// blend pipeline. One Renderer is created per job and is never shared
// across jobs.
type Renderer struct {
	gp *vgpu.GPU
	sy *vgpu.System

	width, height int

	bgTexture  *vgpu.Texture
	subTexture *vgpu.Texture
	readback   *vgpu.Val

	blendPipeline *vgpu.Pipeline

	activeSubtitle int
	haveSubtitle   bool
}

// NewRenderer acquires an offscreen GPU device and configures the
// background/subtitle textures and blend pipeline at (w,h).
func NewRenderer(w, h int) (*Renderer, error) {
	if vgpu.Init() != nil {
		return nil, xerr.GPU(nil, "failed to initialize Vulkan loader")
	}

	gp := vgpu.NewGPU()
	vgpu.Debug = false
	gp.Config("subtitlecast-compositor")

	sy := gp.NewComputeSystem("compositor")
	pl := sy.NewPipeline("blend")

	r := &Renderer{
		gp:            gp,
		sy:            sy,
		width:         w,
		height:        h,
		blendPipeline: pl,
		activeSubtitle: -1,
	}

	vars := sy.Vars()
	set := vars.AddVertexSet()

	bgVar := set.Add("background", vgpu.ImageRGBA32Format, 1, vgpu.TextureRole)
	subVar := set.Add("subtitle", vgpu.ImageRGBA32Format, 1, vgpu.TextureRole)
	_ = bgVar
	_ = subVar

	r.bgTexture = vgpu.NewTexture(sy.Device, vk.Format(vgpu.ImageRGBA32Format))
	r.bgTexture.Format.Size = image.Point{X: w, Y: h}
	r.subTexture = vgpu.NewTexture(sy.Device, vk.Format(vgpu.ImageRGBA32Format))
	r.subTexture.Format.Size = image.Point{X: w, Y: h}

	outVar := set.Add("output", vgpu.ImageRGBA32Format, 1, vgpu.StorageImageRole)
	r.readback = outVar.Vals.Values[0]

	sy.Config()

	return r, nil
}

// Close releases the GPU device and associated resources.
func (r *Renderer) Close() {
	vk.DeviceWaitIdle(r.sy.Device.Device)
	r.sy.Destroy()
	r.gp.Destroy()
	vgpu.Terminate()
}

// UploadBackground uploads one decoded raw RGBA frame to the
// background texture.
func (r *Renderer) UploadBackground(rgba []byte) error {
	if len(rgba) != r.width*r.height*4 {
		return xerr.GPU(nil, "background frame size mismatch: got %d bytes, want %d", len(rgba), r.width*r.height*4)
	}
	r.bgTexture.Format.Size = image.Point{X: r.width, Y: r.height}
	if err := r.bgTexture.SetImage(bytesToNRGBA(rgba, r.width, r.height)); err != nil {
		return xerr.GPU(err, "failed to upload background texture")
	}
	return nil
}

// UploadSubtitle decodes and uploads the subtitle frame at path to the
// subtitle texture, only called when the active subtitle index changes.
func (r *Renderer) UploadSubtitle(path string) error {
	img, err := subtitle.Decode(path)
	if err != nil {
		return err
	}
	if err := r.subTexture.SetImage(img); err != nil {
		return xerr.GPU(err, "failed to upload subtitle texture")
	}
	return nil
}

// RenderFrame dispatches the blend pipeline over the full frame with
// alpha passed as a push constant (blend=false skips the dispatch and
// leaves the background as uploaded), then returns the w*h*4 raw RGBA
// bytes read back from the GPU.
func (r *Renderer) RenderFrame(ctx context.Context, alpha float64, blend bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerr.Cancelled("")
	}

	cmd := r.sy.CmdPool.Buff
	r.sy.CmdResetBindVars(cmd, 0)

	if blend {
		r.blendPipeline.SetPushConstantf("alpha", float32(alpha))
		r.blendPipeline.ComputeDispatch(cmd, (r.width+15)/16, (r.height+15)/16, 1)
	}

	r.sy.ComputeSubmitWait(cmd)

	out := make([]byte, r.width*r.height*4)
	r.readback.CopyFromStaging()
	copy(out, r.readback.Bytes())

	return out, nil
}

// ActiveSubtitleChanged updates the active-subtitle index for
// frameTimeMs and reports whether a new subtitle texture must be
// uploaded before rendering this frame.
func (r *Renderer) ActiveSubtitleChanged(onsetsMs []int64, frameTimeMs float64) (idx int, active bool, changed bool) {
	idx, active = timeline.ActiveSubtitle(onsetsMs, frameTimeMs)
	if !active {
		changed = r.haveSubtitle
		r.haveSubtitle = false
		return idx, active, changed
	}
	changed = !r.haveSubtitle || idx != r.activeSubtitle
	r.activeSubtitle = idx
	r.haveSubtitle = true
	return idx, active, changed
}

func bytesToNRGBA(rgba []byte, w, h int) *image.NRGBA {
	img := &image.NRGBA{
		Pix:    rgba,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	return img
}
