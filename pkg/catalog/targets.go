package catalog

import (
	"github.com/goliatone/go-openc2/pkg/schema"
)

var protocols = []string{"icmp", "tcp", "udp", "sctp"}

// FeatureNames is the features target vocabulary.
var FeatureNames = []string{"versions", "pairs", "profiles", "rate_limit"}

// Payload is the bin/url data type embedded by artifacts.
var Payload = schema.MustType(schema.KindData, "payload", []schema.Field{
	schema.Prop("bin", schema.Binary()),
	schema.Prop("url", schema.String()),
}, schema.WithConstraints(schema.CheckMutuallyExclusive("bin", "url")),
	schema.WithDescription("Raw bytes or a URL from which they can be fetched."))

var (
	Artifact = schema.MustType(schema.KindTarget, "artifact", []schema.Field{
		schema.Prop("mime_type", schema.String()),
		schema.Prop("payload", schema.Embedded(Payload)),
		schema.Prop("hashes", schema.Hashes()),
	}, schema.WithConstraints(schema.CheckAtLeastOne()),
		schema.WithDescription("An array of bytes representing a file-like object or a link to that object."))

	Device = schema.MustType(schema.KindTarget, "device", []schema.Field{
		schema.Prop("hostname", schema.String()),
		schema.Prop("idn_hostname", schema.String()),
		schema.Prop("device_id", schema.String()),
	}, schema.WithDescription("The properties of a hardware device."))

	DomainName = singleString("domain_name", "A network domain name.")
	EmailAddr  = singleString("email_addr", "A single email address.")

	Features = schema.MustType(schema.KindTarget, "features", []schema.Field{
		schema.Prop("features", schema.List(
			schema.Enum(FeatureNames),
			schema.MaxItems(10),
			schema.Unique(),
			schema.WithDefault(func() any { return []any{} }),
		)),
	}, schema.WithDescription("A set of items used with the query action to determine an actuator's capabilities."))

	File = schema.MustType(schema.KindTarget, "file", []schema.Field{
		schema.Prop("name", schema.String()),
		schema.Prop("path", schema.String()),
		schema.Prop("hashes", schema.Hashes()),
	}, schema.WithConstraints(schema.CheckAtLeastOne()),
		schema.WithDescription("Properties of a file."))

	IDNDomainName = singleString("idn_domain_name", "An internationalized domain name.")
	IDNEmailAddr  = singleString("idn_email_addr", "A single internationalized email address.")
	IPv4Net       = singleString("ipv4_net", "An IPv4 address range including CIDR prefix length.")
	IPv6Net       = singleString("ipv6_net", "An IPv6 address range including prefix length.")

	IPv4Connection = connection("ipv4_connection", "A 5-tuple of source and destination IPv4 address ranges, source and destination ports, and protocol.")
	IPv6Connection = connection("ipv6_connection", "A 5-tuple of source and destination IPv6 address ranges, source and destination ports, and protocol.")

	IRI     = singleString("iri", "An internationalized resource identifier.")
	MACAddr = singleString("mac_addr", "A media access control address.")

	Process = newProcess()

	Properties = schema.MustType(schema.KindTarget, "properties", []schema.Field{
		schema.Prop("properties", schema.List(schema.String())),
	}, schema.WithDescription("Data attribute associated with an actuator."))

	URI = singleString("uri", "A uniform resource identifier.")
)

// Targets lists the built-in targets in registration order.
func Targets() []*schema.Type {
	return []*schema.Type{
		Artifact, Device, DomainName, EmailAddr, Features, File,
		IDNDomainName, IDNEmailAddr, IPv4Net, IPv6Net, IPv4Connection,
		IPv6Connection, IRI, MACAddr, Process, Properties, URI,
	}
}

func singleString(name, description string) *schema.Type {
	return schema.MustType(schema.KindTarget, name, []schema.Field{
		schema.Prop(name, schema.String(schema.Required())),
	}, schema.WithDescription(description))
}

func connection(name, description string) *schema.Type {
	return schema.MustType(schema.KindTarget, name, []schema.Field{
		schema.Prop("src_addr", schema.String()),
		schema.Prop("src_port", schema.Integer(schema.Min(0), schema.Max(65535))),
		schema.Prop("dst_addr", schema.String()),
		schema.Prop("dst_port", schema.Integer(schema.Min(0), schema.Max(65535))),
		schema.Prop("protocol", schema.Enum(protocols)),
	}, schema.WithConstraints(schema.CheckAtLeastOne()),
		schema.WithDescription(description))
}

func newProcess() *schema.Type {
	var process *schema.Type
	process = schema.MustType(schema.KindTarget, "process", []schema.Field{
		schema.Prop("pid", schema.Integer(schema.Min(0))),
		schema.Prop("name", schema.String()),
		schema.Prop("cwd", schema.String()),
		schema.Prop("executable", schema.Embedded(File)),
		schema.Prop("parent", schema.EmbeddedRef(func() *schema.Type { return process })),
		schema.Prop("command_line", schema.String()),
	}, schema.WithConstraints(schema.CheckAtLeastOne()),
		schema.WithDescription("Common properties of an instance of a computer program as executed on an operating system."))
	return process
}
