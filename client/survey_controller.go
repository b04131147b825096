// client/survey_controller.go
package client

import (
	"github.com/wfunc/townserver/models"
)

// SurveyAreaController mirrors a survey area's response tallies.
type SurveyAreaController struct {
	baseController
	responses          map[string]int
	responsesListeners []func(map[string]int)
}

func NewSurveyAreaController(id string) *SurveyAreaController {
	return &SurveyAreaController{
		baseController: newBaseController(id),
		responses:      make(map[string]int),
	}
}

func (c *SurveyAreaController) Type() string {
	return models.AreaTypeSurvey
}

func (c *SurveyAreaController) Responses() map[string]int {
	responses := make(map[string]int, len(c.responses))
	for k, v := range c.responses {
		responses[k] = v
	}
	return responses
}

func (c *SurveyAreaController) IsActive() bool {
	return len(c.occupants) > 0
}

func (c *SurveyAreaController) OnResponsesChanged(fn func(map[string]int)) {
	c.responsesListeners = append(c.responsesListeners, fn)
}

func (c *SurveyAreaController) UpdateFrom(m models.Interactable, occupants []*PlayerController) {
	c.updateOccupants(occupants)
	if !equalResponses(c.responses, m.Responses) {
		c.responses = make(map[string]int, len(m.Responses))
		for k, v := range m.Responses {
			c.responses[k] = v
		}
		for _, fn := range c.responsesListeners {
			fn(c.Responses())
		}
	}
}

func equalResponses(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
