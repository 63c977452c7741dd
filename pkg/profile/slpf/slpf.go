// Package slpf declares the OpenC2 stateless packet filtering actuator
// profile: the slpf actuator, the slpf:rule_number target, the slpf args
// extension, and the command restrictions the profile imposes.
package slpf

import (
	"fmt"

	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Nsid is the profile namespace identifier.
const Nsid = "slpf"

var dropProcess = []string{"none", "reject", "false_ack"}

var direction = []string{"both", "ingress", "egress"}

// Actions supported by the profile.
var Actions = []string{"query", "deny", "allow", "update", "delete"}

// TargetTypes supported by the profile.
var TargetTypes = []string{
	"features", "file", "ipv4_net", "ipv6_net", "ipv4_connection",
	"ipv6_connection", "slpf:rule_number",
}

var (
	Actuator = schema.MustType(schema.KindActuator, Nsid, []schema.Field{
		schema.Prop("hostname", schema.String()),
		schema.Prop("named_group", schema.String()),
		schema.Prop("asset_id", schema.String()),
		schema.Prop("asset_tuple", schema.List(schema.String(), schema.MaxItems(10))),
	}, schema.WithDescription("Stateless packet filter actuator specifiers."))

	RuleNumber = schema.MustType(schema.KindTarget, Nsid+":rule_number", []schema.Field{
		schema.Prop("rule_number", schema.Integer(schema.Required(), schema.Min(0))),
	}, schema.WithDescription("Immutable identifier assigned when a rule is created."))

	Args = schema.MustType(schema.KindArgs, Nsid, []schema.Field{
		schema.Prop("drop_process", schema.Enum(dropProcess)),
		schema.Prop("persistent", schema.Boolean()),
		schema.Prop("direction", schema.Enum(direction)),
		schema.Prop("insert_rule", schema.Integer(schema.Min(0))),
	}, schema.WithDescription("Stateless packet filter command arguments."))
)

// Install registers the profile types as extensions.
func Install(reg *registry.Registry) error {
	if reg == nil {
		return fmt.Errorf("slpf: registry is required")
	}
	for _, t := range []*schema.Type{Actuator, RuleNumber, Args} {
		if err := reg.RegisterExtension(t); err != nil {
			return fmt.Errorf("slpf: %w", err)
		}
	}
	return nil
}

// ValidateCommand checks that cmd only uses actions, targets and actuators
// the profile supports.
func ValidateCommand(cmd *schema.Object) error {
	if cmd == nil {
		return fmt.Errorf("slpf: command is required")
	}
	typeName := cmd.TypeName()
	if action := cmd.GetString("action"); !contains(Actions, action) {
		return schema.NewInvalidValueError(typeName, "action", fmt.Sprintf("unsupported action %q", action))
	}
	target := cmd.GetObject("target")
	if target == nil || target.Kind() != schema.KindTarget || !contains(TargetTypes, target.TypeName()) {
		return schema.NewInvalidValueError(typeName, "target", fmt.Sprintf("unsupported target %s", describe(target)))
	}
	if actuator := cmd.GetObject("actuator"); actuator != nil && actuator.Type() != Actuator {
		return schema.NewInvalidValueError(typeName, "actuator", fmt.Sprintf("unsupported actuator %s", describe(actuator)))
	}
	return nil
}

func describe(obj *schema.Object) string {
	if obj == nil {
		return "<none>"
	}
	return fmt.Sprintf("%q", obj.TypeName())
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
