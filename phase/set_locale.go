package phase

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/archup/archup/pkg/retry"
	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// SetLocale validates the configured locale against the host's locale.gen
// candidates and commits it: uncomment in locale.gen, regenerate, write
// locale.conf. In interactive mode an invalid locale can be corrected up to
// three times before the run aborts.
type SetLocale struct {
	GenericPhase

	// LocaleGenPath is overridable for tests.
	LocaleGenPath string
	// LocaleConfPath is overridable for tests.
	LocaleConfPath string

	locale string
}

// Title for the phase
func (p *SetLocale) Title() string {
	return "Set locale"
}

func (p *SetLocale) localeGenPath() string {
	if p.LocaleGenPath != "" {
		return p.LocaleGenPath
	}
	return "/etc/locale.gen"
}

func (p *SetLocale) localeConfPath() string {
	if p.LocaleConfPath != "" {
		return p.LocaleConfPath
	}
	return "/etc/locale.conf"
}

// Run the phase
func (p *SetLocale) Run() error {
	candidates, err := p.candidates()
	if err != nil {
		return err
	}

	p.locale = p.Config.Config.Locale
	err = retry.Times(3, func() error {
		if candidates[p.locale] {
			return nil
		}
		if p.Config.AssumeYes || p.Config.DryRun || !p.Config.Interactive {
			return fmt.Errorf("%w: locale %q not found in %s", retry.ErrAbort, p.locale, p.localeGenPath())
		}
		log.Warnf("locale %q not found in %s", p.locale, p.localeGenPath())
		prompt := &survey.Input{
			Message: "Locale (as listed in locale.gen):",
			Default: "en_US.UTF-8",
		}
		if err := survey.AskOne(prompt, &p.locale); err != nil {
			return fmt.Errorf("%w: prompt failed: %s", retry.ErrAbort, err)
		}
		return fmt.Errorf("locale %q not validated yet", p.locale)
	})
	if err != nil && !candidates[p.locale] {
		return err
	}

	if err := p.uncomment(); err != nil {
		return err
	}
	if err := p.Config.Runner.Run(runner.New("locale-gen")); err != nil {
		return err
	}
	return p.Wet(fmt.Sprintf("write LANG=%s to %s", p.locale, p.localeConfPath()), func() error {
		return os.WriteFile(p.localeConfPath(), []byte("LANG="+p.locale+"\n"), 0644)
	})
}

// candidates collects the locales the host can generate, commented or not.
func (p *SetLocale) candidates() (map[string]bool, error) {
	f, err := os.Open(p.localeGenPath())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.localeGenPath(), err)
	}
	defer f.Close()

	candidates := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "#")
		fields := strings.Fields(line)
		// entries look like "en_US.UTF-8 UTF-8"
		if len(fields) == 2 && strings.Contains(fields[0], "_") {
			candidates[fields[0]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.localeGenPath(), err)
	}
	return candidates, nil
}

// uncomment activates the chosen locale's line in locale.gen. Already active
// lines are left alone so re-running produces no diff.
func (p *SetLocale) uncomment() error {
	return p.Wet(fmt.Sprintf("enable %s in %s", p.locale, p.localeGenPath()), func() error {
		content, err := os.ReadFile(p.localeGenPath())
		if err != nil {
			return fmt.Errorf("read %s: %w", p.localeGenPath(), err)
		}

		lines := strings.Split(string(content), "\n")
		changed := false
		for i, line := range lines {
			trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
			if !strings.HasPrefix(trimmed, p.locale+" ") {
				continue
			}
			if !strings.HasPrefix(strings.TrimSpace(line), "#") {
				continue
			}
			lines[i] = trimmed
			changed = true
		}
		if !changed {
			log.Debugf("locale %s already active in %s", p.locale, p.localeGenPath())
			return nil
		}

		info, err := os.Stat(p.localeGenPath())
		if err != nil {
			return err
		}
		return os.WriteFile(p.localeGenPath(), []byte(strings.Join(lines, "\n")), info.Mode())
	})
}
