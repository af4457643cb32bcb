package phase

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	log "github.com/sirupsen/logrus"
)

// Confirm asks the user a yes/no question and aborts the run cleanly when the
// answer is no. Skipped entirely with --yes and in dry-run mode.
type Confirm struct {
	GenericPhase

	// Question is presented as-is.
	Question string
	// Default answer when the user just presses enter.
	Default bool
}

// Title for the phase
func (p *Confirm) Title() string {
	return "Confirm"
}

// ShouldRun is true when a prompt is wanted.
func (p *Confirm) ShouldRun() bool {
	if p.Config.AssumeYes {
		return false
	}
	if p.Config.DryRun {
		log.Debugf("dry run, skipping confirmation: %s", p.Question)
		return false
	}
	return true
}

// Run the phase
func (p *Confirm) Run() error {
	if !p.Config.Interactive {
		return fmt.Errorf("confirmation required but not running in a terminal, use --yes")
	}

	var answer bool
	prompt := &survey.Confirm{
		Message: p.Question,
		Default: p.Default,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if !answer {
		return ErrAborted
	}
	return nil
}
