package slpf_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/dispatch"
	"github.com/goliatone/go-openc2/pkg/profile/slpf"
	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

func newEngine(t *testing.T) *dispatch.Engine {
	t.Helper()
	reg := registry.New()
	if err := catalog.Install(reg); err != nil {
		t.Fatalf("install catalog: %v", err)
	}
	if err := slpf.Install(reg); err != nil {
		t.Fatalf("install slpf: %v", err)
	}
	return dispatch.New(reg)
}

func TestInstall(t *testing.T) {
	reg := registry.New()
	if err := slpf.Install(reg); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, ok := reg.LookupExtension(schema.KindActuator, "slpf"); !ok {
		t.Fatalf("expected slpf actuator extension")
	}
	if _, ok := reg.Lookup(schema.KindArgs, "slpf"); ok {
		t.Fatalf("slpf args must not be registered as a core type")
	}
	if err := slpf.Install(nil); err == nil {
		t.Fatalf("expected nil registry to fail")
	}
}

func TestValidateCommand(t *testing.T) {
	engine := newEngine(t)
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "deny connection", raw: `{"action": "deny", "target": {"ipv4_connection": {"protocol": "tcp"}}, "actuator": {"slpf": {}}}`},
		{name: "delete rule", raw: `{"action": "delete", "target": {"slpf:rule_number": 7}}`},
		{name: "query features", raw: `{"action": "query", "target": {"features": ["versions"]}}`},
		{name: "unsupported action", raw: `{"action": "scan", "target": {"ipv4_net": "10.0.0.0/8"}}`, wantErr: true},
		{name: "unsupported target", raw: `{"action": "deny", "target": {"domain_name": "example.com"}}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := engine.Parse(tc.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			err = slpf.ValidateCommand(cmd)
			if tc.wantErr && !errors.Is(err, schema.ErrInvalidValue) {
				t.Fatalf("expected invalid value, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("validate: %v", err)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	engine := newEngine(t)
	args, err := engine.ParseArgs(`{"slpf": {"persistent": "true", "insert_rule": 3, "direction": "egress"}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ext, _ := args.Extra("slpf")
	obj := ext.(*schema.Object)
	if persistent, _ := obj.GetBool("persistent"); !persistent {
		t.Fatalf("expected persistent flag, got %s", obj)
	}
	if got := args.String(); got != `{"slpf":{"persistent":true,"direction":"egress","insert_rule":3}}` {
		t.Fatalf("unexpected encoding %s", got)
	}
	if _, err := engine.ParseArgs(`{"slpf": {"insert_rule": -1}}`); !errors.Is(err, schema.ErrInvalidValue) {
		t.Fatalf("expected negative rule to fail, got %v", err)
	}
}

func TestActuator_AssetTuple(t *testing.T) {
	engine := newEngine(t)
	actuator, err := engine.ParseActuator(`{"slpf": {"hostname": "fw-1", "asset_tuple": ["a", "b"]}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := actuator.String(); got != `{"slpf":{"hostname":"fw-1","asset_tuple":["a","b"]}}` {
		t.Fatalf("unexpected encoding %s", got)
	}
	tooMany := `{"slpf": {"asset_tuple": ["1","2","3","4","5","6","7","8","9","10","11"]}}`
	if _, err := engine.ParseActuator(tooMany); !errors.Is(err, schema.ErrInvalidValue) {
		t.Fatalf("expected asset_tuple bound to fail, got %v", err)
	}
}
