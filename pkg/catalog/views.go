package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-openc2/pkg/schema"
)

// NewCommandID returns a random command identifier.
func NewCommandID() string {
	return uuid.NewString()
}

// CommandView exposes typed accessors over a command object.
type CommandView struct {
	*schema.Object
}

// AsCommand wraps obj when it is a command.
func AsCommand(obj *schema.Object) (CommandView, error) {
	if obj == nil || obj.Kind() != schema.KindMessage || !obj.Type().Has("action") {
		return CommandView{}, fmt.Errorf("catalog: %s is not a command", describe(obj))
	}
	return CommandView{Object: obj}, nil
}

func (c CommandView) Action() string {
	return c.GetString("action")
}

func (c CommandView) Target() *schema.Object {
	return c.GetObject("target")
}

func (c CommandView) Actuator() *schema.Object {
	return c.GetObject("actuator")
}

func (c CommandView) CommandID() string {
	return c.GetString("command_id")
}

// Args returns the command args, if any.
func (c CommandView) Args() (ArgsView, bool) {
	obj := c.GetObject("args")
	if obj == nil {
		return ArgsView{}, false
	}
	return ArgsView{Object: obj}, true
}

// ResponseView exposes typed accessors over a response object.
type ResponseView struct {
	*schema.Object
}

// AsResponse wraps obj when it is a response.
func AsResponse(obj *schema.Object) (ResponseView, error) {
	if obj == nil || obj.Kind() != schema.KindMessage || !obj.Type().Has("status") {
		return ResponseView{}, fmt.Errorf("catalog: %s is not a response", describe(obj))
	}
	return ResponseView{Object: obj}, nil
}

func (r ResponseView) Status() int64 {
	status, _ := r.GetInt("status")
	return status
}

func (r ResponseView) StatusText() string {
	return r.GetString("status_text")
}

func (r ResponseView) Results() map[string]any {
	return r.GetMap("results")
}

// ArgsView exposes typed accessors over an args object.
type ArgsView struct {
	*schema.Object
}

func (a ArgsView) StartTime() (time.Time, bool) {
	return a.timestamp("start_time")
}

func (a ArgsView) StopTime() (time.Time, bool) {
	return a.timestamp("stop_time")
}

// Duration returns the duration property, which is carried in milliseconds.
func (a ArgsView) Duration() (time.Duration, bool) {
	ms, ok := a.GetInt("duration")
	if !ok {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func (a ArgsView) ResponseRequested() string {
	return a.GetString("response_requested")
}

// Extension returns profile args attached under name, such as "slpf".
func (a ArgsView) Extension(name string) (*schema.Object, bool) {
	value, ok := a.Extra(name)
	if !ok {
		return nil, false
	}
	obj, ok := value.(*schema.Object)
	return obj, ok
}

func (a ArgsView) timestamp(name string) (time.Time, bool) {
	ms, ok := a.GetInt(name)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func describe(obj *schema.Object) string {
	if obj == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q", obj.Kind(), obj.TypeName())
}
