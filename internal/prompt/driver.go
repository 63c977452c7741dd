package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt: aborted")

// InputConfig describes a free-text question. Validator runs on every answer
// and a non-nil error re-asks.
type InputConfig struct {
	Message   string
	Default   string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no question.
type ConfirmConfig struct {
	Message string
	Default bool
}

// SelectConfig describes a choice among Options. PageSize 0 keeps the
// survey default.
type SelectConfig struct {
	Message  string
	Options  []string
	PageSize int
}

// Driver is the terminal seen by the Composer. Select and MultiSelect answer
// with indices into Options.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns a Driver reading from the process terminal. Prompts
// and Info lines are written to out (stderr when nil) so command output on
// stdout stays clean.
func NewSurveyDriver(out io.Writer) Driver {
	if out == nil {
		out = os.Stderr
	}
	d := &surveyDriver{out: out}
	if f, ok := out.(*os.File); ok {
		d.opts = append(d.opts, survey.WithStdio(os.Stdin, f, f))
	}
	return d
}

// ask runs one survey prompt into answer.
func (d *surveyDriver) ask(ctx context.Context, p survey.Prompt, answer any, extra ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := append(append([]survey.AskOpt(nil), d.opts...), extra...)
	err := survey.AskOne(p, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	var extra []survey.AskOpt
	if validate := cfg.Validator; validate != nil {
		extra = append(extra, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	p := &survey.Input{Message: cfg.Message, Default: cfg.Default}
	if err := d.ask(ctx, p, &answer, extra...); err != nil {
		return "", err
	}
	return answer, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	if err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default}, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	var answer int
	p := &survey.Select{Message: cfg.Message, Options: cfg.Options, PageSize: cfg.PageSize}
	if err := d.ask(ctx, p, &answer); err != nil {
		return -1, err
	}
	return answer, nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	var answer []int
	p := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, PageSize: cfg.PageSize}
	if err := d.ask(ctx, p, &answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
