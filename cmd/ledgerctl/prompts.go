package main

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/huh"
)

// surveyOpts 所有 survey 問題共用的樣式
var surveyOpts = []survey.AskOpt{
	survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Text = "-"
	}),
}

func promptRequired(title string, value *string, validate func(string) error) error {
	return huh.NewInput().
		Title(title).
		Value(value).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", strings.ToLower(title))
			}
			if validate != nil {
				return validate(s)
			}
			return nil
		}).
		Run()
}

func validateEmail(s string) error {
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// confirmHuh 轉帳前確認
func confirmHuh(message string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	return confirm, err
}

// confirmSurvey 提款前確認
func confirmSurvey(message string) (bool, error) {
	var confirm bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirm, surveyOpts...); err != nil {
		return false, err
	}
	return confirm, nil
}
