package controller

import (
	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/internal/service"
	"smartfusion-dashboard/pkg/audio"

	"github.com/gofiber/fiber/v2"
)

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	ToggleCapture(ctx *fiber.Ctx) error
	PushChunk(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	TogglePlayback(ctx *fiber.Ctx) error
	Audio(ctx *fiber.Ctx) error
}

type voiceController struct {
	capture  service.ICaptureService
	playback service.IPlaybackService
	source   *audio.PipeSource
	player   *audio.ClipPlayer
}

func NewVoiceController(
	capture service.ICaptureService,
	playback service.IPlaybackService,
	source *audio.PipeSource,
	player *audio.ClipPlayer,
) IVoiceController {
	return &voiceController{
		capture:  capture,
		playback: playback,
		source:   source,
		player:   player,
	}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	v := r.Group("/voice")
	v.Post("toggle", c.ToggleCapture)
	v.Post("chunks", c.PushChunk)
	v.Get("status", c.Status)

	p := r.Group("/playback")
	p.Post("toggle", c.TogglePlayback)
	p.Get("audio", c.Audio)
}

// ToggleCapture starts recording when idle and finalizes the take when
// recording. Finalizing transcribes the buffered audio and stages the
// transcript as pending chat input.
func (c *voiceController) ToggleCapture(ctx *fiber.Ctx) error {
	recording, err := c.capture.Toggle(ctx.Context())
	if err != nil {
		return err
	}
	status := c.status()
	status.Recording = recording
	return ctx.JSON(serverutils.SuccessResponse("Capture toggled", status))
}

// PushChunk feeds one raw audio chunk from the view into the open
// capture stream.
func (c *voiceController) PushChunk(ctx *fiber.Ctx) error {
	if err := c.source.Push(ctx.Body()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chunk accepted", nil))
}

func (c *voiceController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Voice status", c.status()))
}

func (c *voiceController) TogglePlayback(ctx *fiber.Ctx) error {
	var req dto.PlaybackToggleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	active, err := c.playback.Toggle(ctx.Context(), req.Text)
	if err != nil {
		return err
	}
	status := c.status()
	status.PlaybackActive = active
	return ctx.JSON(serverutils.SuccessResponse("Playback toggled", status))
}

// Audio hands the staged synthesized clip to the view exactly once.
func (c *voiceController) Audio(ctx *fiber.Ctx) error {
	clip, ok := c.player.Take()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no clip staged")
	}
	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	return ctx.Send(clip)
}

func (c *voiceController) status() dto.VoiceStatus {
	status := dto.VoiceStatus{
		Recording:      c.capture.Recording(),
		PlaybackActive: c.playback.Active(),
	}
	if msg := c.capture.LastError(); msg != "" {
		status.Error = msg
	} else if msg := c.playback.LastError(); msg != "" {
		status.Error = msg
	}
	return status
}
