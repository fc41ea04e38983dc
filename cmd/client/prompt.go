package main

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// terminalPrompter reads page input with promptui.
type terminalPrompter struct{}

func (terminalPrompter) Prompt(label string) (string, error) {
	p := promptui.Prompt{Label: label}
	return p.Run()
}

func (terminalPrompter) Password(label string) (string, error) {
	p := promptui.Prompt{Label: label, Mask: '*'}
	return p.Run()
}

// Confirm treats a "no" answer as false rather than an error.
func (terminalPrompter) Confirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
