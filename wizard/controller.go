package wizard

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// StepHandler is entered every time its step becomes current.
type StepHandler interface {
	Enter(session *Session)
}

// Leaver is implemented by steps that act on the session when the user moves
// forward. Returning false keeps the wizard where it is.
type Leaver interface {
	Leave(session *Session) bool
}

type Navigator interface {
	Next() bool
	Prev() bool
	GoToStep(step Step) error
}

type Controller struct {
	Session      *Session
	CurrentStep  Step
	Handlers     map[Step]StepHandler
	OnStepChange func(step Step)
	Logger       *logrus.Logger
}

func NewController(session *Session, logger *logrus.Logger) *Controller {
	return &Controller{
		Session:     session,
		CurrentStep: StepStart,
		Handlers:    map[Step]StepHandler{},
		Logger:      logger,
	}
}

func (controller *Controller) Register(step Step, handler StepHandler) {
	controller.Handlers[step] = handler
}

// Next moves one step forward when the current step is complete and its Leave
// hook agrees.
func (controller *Controller) Next() bool {
	if !controller.NextEnabled() {
		controller.Logger.Debugf("Cannot advance from step %d", controller.CurrentStep)
		return false
	}

	if leaver, ok := controller.Handlers[controller.CurrentStep].(Leaver); ok {
		if !leaver.Leave(controller.Session) {
			controller.Logger.Debugf("Step %d vetoed leaving", controller.CurrentStep)
			return false
		}
	}

	controller.enter(controller.CurrentStep + 1)
	return true
}

func (controller *Controller) Prev() bool {
	if !controller.PrevEnabled() {
		return false
	}
	controller.enter(controller.CurrentStep - 1)
	return true
}

// GoToStep jumps to any step without checking completeness or calling Leave.
func (controller *Controller) GoToStep(step Step) error {
	if !step.IsValidStep() {
		return fmt.Errorf("invalid wizard step %d", step)
	}
	controller.enter(step)
	return nil
}

func (controller *Controller) NextEnabled() bool {
	return controller.CurrentStep < StepExecute && controller.Session.CanAdvance(controller.CurrentStep)
}

func (controller *Controller) PrevEnabled() bool {
	return controller.CurrentStep > StepStart
}

func (controller *Controller) enter(step Step) {
	controller.Logger.Debugf("Entering step %d (%s)", step, step.Title())
	controller.CurrentStep = step
	if handler, ok := controller.Handlers[step]; ok {
		handler.Enter(controller.Session)
	}
	if controller.OnStepChange != nil {
		controller.OnStepChange(step)
	}
}
