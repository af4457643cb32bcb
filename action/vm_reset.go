package action

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/runner"
	"github.com/archup/archup/pkg/vm"
	log "github.com/sirupsen/logrus"
)

// VmReset tears down the disposable VM state.
type VmReset struct {
	// Harness manages the VM artifacts.
	Harness *vm.Harness
	// Config is the run state.
	Config *config.Run
	// All also deletes the cached base image.
	All bool
}

// Run the action
func (v VmReset) Run() error {
	if !v.Config.AssumeYes {
		if !v.Config.Interactive {
			return fmt.Errorf("confirmation required but not running in a terminal, use --yes")
		}
		question := "Delete the overlay disk?"
		if v.All {
			question = "Delete the overlay and the cached base image?"
		}
		var answer bool
		prompt := &survey.Confirm{Message: question, Default: false}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
		if !answer {
			log.Infof("aborted on user request")
			return nil
		}
	}

	if v.Config.DryRun {
		log.Infof("%s reset VM state in %s", runner.DryRunPrefix, v.Harness.CacheDir)
		return nil
	}
	return v.Harness.Reset(v.All)
}
