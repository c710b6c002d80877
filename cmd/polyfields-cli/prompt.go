package main

import (
	"errors"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var errAborted = errors.New("aborted")

type prompter interface {
	Select(message string, options []string) (int, error)
	MultiSelect(message string, options []string, defaults []int) ([]int, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	var out string
	if err := survey.AskOne(&survey.Select{Message: message, Options: options}, &out); err != nil {
		return -1, translateSurveyErr(err)
	}
	return slices.Index(options, out), nil
}

func (surveyPrompter) MultiSelect(message string, options []string, defaults []int) ([]int, error) {
	var preset []string
	for _, index := range defaults {
		if index >= 0 && index < len(options) {
			preset = append(preset, options[index])
		}
	}
	var picked []string
	prompt := &survey.MultiSelect{Message: message, Options: options, Default: preset}
	if err := survey.AskOne(prompt, &picked, survey.WithValidator(survey.Required)); err != nil {
		return nil, translateSurveyErr(err)
	}
	out := make([]int, 0, len(picked))
	for _, answer := range picked {
		if i := slices.Index(options, answer); i >= 0 {
			out = append(out, i)
		}
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
