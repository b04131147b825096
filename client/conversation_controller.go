// client/conversation_controller.go
package client

import (
	"github.com/wfunc/townserver/models"
)

// ConversationAreaController mirrors a conversation area and notifies
// listeners when its topic changes.
type ConversationAreaController struct {
	baseController
	topic          string
	topicListeners []func(string)
}

func NewConversationAreaController(id string) *ConversationAreaController {
	return &ConversationAreaController{
		baseController: newBaseController(id),
	}
}

func (c *ConversationAreaController) Type() string {
	return models.AreaTypeConversation
}

func (c *ConversationAreaController) Topic() string {
	return c.topic
}

func (c *ConversationAreaController) IsActive() bool {
	return c.topic != "" && len(c.occupants) > 0
}

func (c *ConversationAreaController) OnTopicChanged(fn func(string)) {
	c.topicListeners = append(c.topicListeners, fn)
}

func (c *ConversationAreaController) UpdateFrom(m models.Interactable, occupants []*PlayerController) {
	c.updateOccupants(occupants)
	if m.Topic != c.topic {
		c.topic = m.Topic
		for _, fn := range c.topicListeners {
			fn(c.topic)
		}
	}
}
