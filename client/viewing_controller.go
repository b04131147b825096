// client/viewing_controller.go
package client

import (
	"github.com/wfunc/townserver/models"
)

// ViewingAreaController mirrors a viewing area: the shared video, whether it
// is playing and how far along it is. Each facet has its own listener list.
type ViewingAreaController struct {
	baseController
	video          string
	isPlaying      bool
	elapsedTimeSec float64

	videoListeners    []func(string)
	playbackListeners []func(bool)
	progressListeners []func(float64)
}

func NewViewingAreaController(id string) *ViewingAreaController {
	return &ViewingAreaController{
		baseController: newBaseController(id),
	}
}

func (c *ViewingAreaController) Type() string {
	return models.AreaTypeViewing
}

func (c *ViewingAreaController) Video() string {
	return c.video
}

func (c *ViewingAreaController) IsPlaying() bool {
	return c.isPlaying
}

func (c *ViewingAreaController) ElapsedTimeSec() float64 {
	return c.elapsedTimeSec
}

func (c *ViewingAreaController) IsActive() bool {
	return c.video != ""
}

func (c *ViewingAreaController) OnVideoChanged(fn func(string)) {
	c.videoListeners = append(c.videoListeners, fn)
}

func (c *ViewingAreaController) OnPlaybackChanged(fn func(bool)) {
	c.playbackListeners = append(c.playbackListeners, fn)
}

func (c *ViewingAreaController) OnProgressChanged(fn func(float64)) {
	c.progressListeners = append(c.progressListeners, fn)
}

func (c *ViewingAreaController) UpdateFrom(m models.Interactable, occupants []*PlayerController) {
	c.updateOccupants(occupants)
	if m.Video != c.video {
		c.video = m.Video
		for _, fn := range c.videoListeners {
			fn(c.video)
		}
	}
	if m.IsPlaying != c.isPlaying {
		c.isPlaying = m.IsPlaying
		for _, fn := range c.playbackListeners {
			fn(c.isPlaying)
		}
	}
	if m.ElapsedTimeSec != c.elapsedTimeSec {
		c.elapsedTimeSec = m.ElapsedTimeSec
		for _, fn := range c.progressListeners {
			fn(c.elapsedTimeSec)
		}
	}
}
