// Package config implements the Config Resolver: loading a structured
// document into core.Config, validating it, and resolving the ordered
// directive list for a given schema.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tablepart/internal/core"
)

// rawConfig mirrors the on-disk document shape (§3): a recursive
// record whose directive's nested block is named by partition_type.
// Loading normalizes this into core.Config's sum-typed Directive, per
// the "Dynamic configuration → tagged variants" design note.
type rawConfig struct {
	PartitionTargets map[string][]rawDirective `yaml:"partition_targets" json:"partition_targets"`
	ExcludedSchemata []string                  `yaml:"excluded_schemata" json:"excluded_schemata"`
}

type rawDirective struct {
	Table         string    `yaml:"table" json:"table" toml:"table"`
	TargetSchema  string    `yaml:"target_schema,omitempty" json:"target_schema,omitempty" toml:"target_schema,omitempty"`
	PartitionKey  string    `yaml:"partition_key" json:"partition_key" toml:"partition_key"`
	PartitionType string    `yaml:"partition_type" json:"partition_type" toml:"partition_type"`
	Range         *rawRange `yaml:"range,omitempty" json:"range,omitempty" toml:"range,omitempty"`
	List          *rawList  `yaml:"list,omitempty" json:"list,omitempty" toml:"list,omitempty"`
	DropTable     bool      `yaml:"drop_table,omitempty" json:"drop_table,omitempty" toml:"drop_table,omitempty"`
}

type rawRange struct {
	IntervalType string `yaml:"interval_type" json:"interval_type" toml:"interval_type"`
	Interval     int    `yaml:"interval" json:"interval" toml:"interval"`
}

type rawList struct {
	Values [][]string `yaml:"values" json:"values" toml:"values"`
}

// Load reads a YAML or JSON configuration file (JSON parses as a YAML
// subset, so one decoder handles both) and validates every directive
// it contains, failing on the first violation with ErrInvalidConfig.
func Load(path string) (*core.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.ErrIOError, err, "reading config %q", path)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapError(core.ErrInvalidConfig, err, "parsing config %q", path)
	}

	return normalize(raw)
}

func normalize(raw rawConfig) (*core.Config, error) {
	cfg := &core.Config{
		PartitionTargets: make(map[string][]core.Directive, len(raw.PartitionTargets)),
		ExcludedSchemata: make(map[string]bool, len(raw.ExcludedSchemata)),
	}
	for _, s := range raw.ExcludedSchemata {
		cfg.ExcludedSchemata[s] = true
	}

	for schema, directives := range raw.PartitionTargets {
		out := make([]core.Directive, 0, len(directives))
		for _, rd := range directives {
			d := core.Directive{
				Table:         rd.Table,
				TargetSchema:  rd.TargetSchema,
				PartitionKey:  rd.PartitionKey,
				PartitionType: core.PartitionType(strings.ToLower(rd.PartitionType)),
				DropTable:     rd.DropTable,
			}
			if rd.Range != nil {
				d.Range = &core.RangeSpec{IntervalType: rd.Range.IntervalType, Interval: rd.Range.Interval}
			}
			if rd.List != nil {
				d.List = &core.ListSpec{Values: rd.List.Values}
			}
			if err := d.Validate(); err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		cfg.PartitionTargets[schema] = out
	}
	return cfg, nil
}

// Resolver wraps a loaded Config and implements targetsFor (§4.1).
type Resolver struct {
	cfg *core.Config
}

// NewResolver builds a Resolver over an already-loaded configuration.
func NewResolver(cfg *core.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// TargetsFor returns the ordered directive list for schema, falling
// back to the wildcard "*" entry, then to an empty list.
func (r *Resolver) TargetsFor(schema string) []core.Directive {
	if d, ok := r.cfg.PartitionTargets[schema]; ok {
		return d
	}
	if d, ok := r.cfg.PartitionTargets["*"]; ok {
		return d
	}
	return nil
}

// Excluded reports whether schema is in the exclusion set.
func (r *Resolver) Excluded(schema string) bool {
	return r.cfg.ExcludedSchemata[schema]
}

const sampleComment = `
# partition_targets maps a schema name (or the literal wildcard "*") to
# an ordered list of table directives.
#
#   table          - name of the source table to partition (required)
#   target_schema  - schema to create the partitioned table in
#                    (defaults to the schema it's processed under)
#   partition_key  - column to partition by (required)
#   partition_type - "range" or "list" (required)
#   range:
#     interval_type - "month", "year", or a numeric database type name
#     interval      - step size
#   list:
#     values        - list of value groups, one group per child
#   drop_table     - if true, drop the renamed original after the swap
#
# excluded_schemata lists schemas the enumerator must never touch.
`

// sampleDoc is the document GenerateSample renders.
type sampleDoc struct {
	PartitionTargets map[string][]rawDirective `yaml:"partition_targets" json:"partition_targets" toml:"partition_targets"`
	ExcludedSchemata []string                  `yaml:"excluded_schemata" json:"excluded_schemata" toml:"excluded_schemata"`
}

func sample() sampleDoc {
	return sampleDoc{
		PartitionTargets: map[string][]rawDirective{
			"billing": {
				{
					Table:         "usage_events",
					PartitionKey:  "usage_start",
					PartitionType: "range",
					Range:         &rawRange{IntervalType: "month", Interval: 1},
				},
				{
					Table:         "region_codes",
					PartitionKey:  "region",
					PartitionType: "list",
					List:          &rawList{Values: [][]string{{"us-east", "us-west"}, {"eu-central"}}},
				},
			},
		},
		ExcludedSchemata: []string{"pg_catalog", "information_schema"},
	}
}

// GenerateSample renders a sample configuration in the requested format
// ("yaml", "json", or "toml"). YAML and TOML output end with a comment
// block describing each field; JSON output carries no comments.
func GenerateSample(format string) (string, error) {
	doc := sample()
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return "", core.WrapError(core.ErrIOError, err, "rendering sample config")
		}
		return string(out) + sampleComment, nil
	case "json":
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", core.WrapError(core.ErrIOError, err, "rendering sample config")
		}
		return string(out) + "\n", nil
	case "toml":
		var b strings.Builder
		enc := tomlEncoder(&b)
		if err := enc(doc); err != nil {
			return "", core.WrapError(core.ErrIOError, err, "rendering sample config")
		}
		return b.String() + sampleComment, nil
	default:
		return "", core.NewError(core.ErrInvalidConfig, "unsupported sample config format %q", format)
	}
}
