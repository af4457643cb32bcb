// Package phase contains the discrete steps of the provisioning flows and a
// manager that runs them in order.
package phase

import (
	"fmt"

	"github.com/archup/archup/pkg/config"
	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"
)

// ErrAborted signals that the user declined to continue. Actions treat it as
// a clean exit, not a failure.
var ErrAborted = fmt.Errorf("aborted")

type phase interface {
	Run() error
	Title() string
}

type withconfig interface {
	Title() string
	Prepare(*config.Run) error
}

type conditional interface {
	ShouldRun() bool
}

// beforehook receives the phase title before the phase runs
type beforehook interface {
	Before(string) error
}

// afterhook receives any error returned from the phase run
type afterhook interface {
	After(error) error
}

// Manager executes phases to perform a provisioning run
type Manager struct {
	phases []phase
	Config *config.Run
}

// AddPhase adds a Phase to Manager
func (m *Manager) AddPhase(p ...phase) {
	m.phases = append(m.phases, p...)
}

// Run executes all the added Phases in order
func (m *Manager) Run() error {
	for _, p := range m.phases {
		title := p.Title()

		if p, ok := p.(withconfig); ok {
			log.Debugf("preparing phase '%s'", title)
			if err := p.Prepare(m.Config); err != nil {
				return err
			}
		}

		if p, ok := p.(conditional); ok {
			if !p.ShouldRun() {
				log.Debugf("skipping phase '%s'", title)
				continue
			}
		}

		if p, ok := p.(beforehook); ok {
			if err := p.Before(title); err != nil {
				log.Debugf("before hook failed '%s'", err.Error())
				return err
			}
		}

		text := aurora.Green("==> Running phase: %s").String()
		log.Infof(text, title)
		result := p.Run()

		if p, ok := p.(afterhook); ok {
			if err := p.After(result); err != nil {
				log.Debugf("after hook failed: '%s' (phase result: %v)", err.Error(), result)
				return err
			}
		}

		if result != nil {
			return result
		}
	}

	return nil
}
