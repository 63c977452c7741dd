package catalog

import (
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Actions is the OpenC2 v1.0 action vocabulary.
var Actions = []string{
	"scan", "locate", "query", "deny", "contain", "allow", "start", "stop",
	"restart", "cancel", "set", "update", "redirect", "create", "delete",
	"detonate", "restore", "copy", "investigate", "remediate",
}

// ResponseRequested is the args.response_requested vocabulary.
var ResponseRequested = []string{"none", "ack", "status", "complete"}

var (
	// Args holds the command modifiers shared by every profile. Profile args
	// are attached under their own key through the registry extension table.
	Args = schema.MustType(schema.KindArgs, "args", []schema.Field{
		schema.Prop("start_time", schema.DateTime()),
		schema.Prop("stop_time", schema.DateTime()),
		schema.Prop("duration", schema.Integer(schema.Min(0))),
		schema.Prop("response_requested", schema.Enum(ResponseRequested)),
	}, schema.WithConstraints(
		schema.CheckAtMost(2, "start_time", "stop_time", "duration"),
		checkTimeWindow,
	), schema.WithDescription("Additional information that applies to the command."))

	Command = schema.MustType(schema.KindMessage, "command", []schema.Field{
		schema.Prop("action", schema.Enum(Actions, schema.Required())),
		schema.Prop("target", schema.Target(schema.Required())),
		schema.Prop("args", schema.Args()),
		schema.Prop("actuator", schema.Actuator()),
		schema.Prop("command_id", schema.String()),
	}, schema.WithDescription("An OpenC2 command."))

	Response = schema.MustType(schema.KindMessage, "response", []schema.Field{
		schema.Prop("status", schema.Integer(schema.Required())),
		schema.Prop("status_text", schema.String()),
		schema.Prop("results", schema.Dictionary()),
	}, schema.WithDescription("An OpenC2 response."))
)

func checkTimeWindow(o *schema.Object) error {
	start, hasStart := o.GetInt("start_time")
	stop, hasStop := o.GetInt("stop_time")
	if hasStart && hasStop && stop < start {
		return schema.NewInvalidValueError(o.TypeName(), "stop_time", "stop_time must not be earlier than start_time")
	}
	return nil
}
