package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/testsupport"
)

type stubDriver struct {
	inputs     []string
	selectIdx  []int
	multiIdx   [][]int
	confirm    []bool
	messages   []string
	inputPos   int
	selectPos  int
	multiPos   int
	confirmPos int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.messages = append(s.messages, msg)
	return nil
}

func TestCompose_FullCommand(t *testing.T) {
	driver := &stubDriver{
		// target ipv4_net; slpf actuator fields; base args fields; slpf insert_rule
		inputs: []string{"10.0.0.0/8", "fw-1", "", "", "", "", "", "60000", ""},
		// action deny; target ipv4_net; actuator slpf; response_requested skip;
		// drop_process reject; direction skip
		selectIdx: []int{3, 9, 0, 0, 2, 0},
		// add actuator; add args; add slpf args; persistent; command id
		confirm: []bool{true, true, true, false, false},
	}
	composer, err := NewComposer(testsupport.NewEngine(t), driver)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	cmd, err := composer.Compose(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	want := `{"action":"deny","target":{"ipv4_net":"10.0.0.0/8"},"args":{"duration":60000,"slpf":{"drop_process":"reject"}},"actuator":{"slpf":{"hostname":"fw-1"}}}`
	if got := cmd.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if driver.inputPos != len(driver.inputs) || driver.selectPos != len(driver.selectIdx) || driver.confirmPos != len(driver.confirm) {
		t.Fatalf("expected every scripted answer to be consumed")
	}
	if len(driver.messages) == 0 || driver.messages[0] != catalog.IPv4Net.Description() {
		t.Fatalf("expected the target description first, got %v", driver.messages)
	}
}

func TestCompose_FeaturesWithGeneratedID(t *testing.T) {
	driver := &stubDriver{
		// action query; target features
		selectIdx: []int{2, 4},
		multiIdx:  [][]int{{0, 2}},
		// no actuator; no args; command id
		confirm: []bool{false, false, true},
	}
	composer, err := NewComposer(testsupport.NewEngine(t), driver)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	cmd, err := composer.Compose(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if diff := cmp.Diff([]string{"versions", "profiles"}, cmd.GetObject("target").GetStrings("features")); diff != "" {
		t.Fatalf("unexpected features (-want +got):\n%s", diff)
	}
	if cmd.GetString("command_id") == "" {
		t.Fatalf("expected generated command id")
	}
}

func TestCompose_PropagatesDriverErrors(t *testing.T) {
	composer, err := NewComposer(testsupport.NewEngine(t), &stubDriver{})
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	if _, err := composer.Compose(context.Background()); err == nil {
		t.Fatalf("expected unscripted driver to fail")
	}
	if _, err := NewComposer(nil, &stubDriver{}); err == nil {
		t.Fatalf("expected nil engine to fail")
	}
}

func TestSplitHelpers(t *testing.T) {
	if diff := cmp.Diff([]any{"a", "b"}, splitList(" a, ,b ")); diff != "" {
		t.Fatalf("unexpected list (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"md5": "AB", "sha1": "CD"}, splitPairs("md5=AB, sha1 = CD, junk")); diff != "" {
		t.Fatalf("unexpected pairs (-want +got):\n%s", diff)
	}
	if got := articleFor("actuator"); got != "an" {
		t.Fatalf("expected an, got %q", got)
	}
}
