package hclspec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
	"github.com/olusolaa/miq-converge/internal/log"
)

const hclDocument = `
provider "ocp" {
  type       = "openshift-origin"
  zone       = "default"
  hostname   = "ocp.example.com"
  port       = 8443
  token      = env("MIQ_TEST_TOKEN")
  verify_ssl = false
  monitoring          = "prometheus"
  monitoring_hostname = "prom.example.com"
  monitoring_port     = 443
}

alert "High CPU" {
  db         = "ContainerNode"
  expression = {
    eval_method = "mw_heap_used"
    mode        = "internal"
    options     = { value_mw_greater_than = 20 }
  }
  options = { notifications = { delay_next_evaluation = 600 } }
  enabled = true
}

user "jdoe" {
  name     = "John Doe"
  password = trimspace(file("password.txt"))
  group    = "EvmGroup-user"
  email    = "jdoe@example.com"
}

custom_attributes "provider" "ocp" {
  attributes = [
    { name = "owner", value = "team-a" },
    { name = "tier", value = "gold", section = "metadata" },
  ]
}

tag_assignment "vm" "web-01" {
  state = "absent"
  tags  = [{ category = "environment", name = "prod" }]
}

policy_assignment "policy profile" "OpenSCAP profile" {
  resource      = "provider"
  resource_name = "ocp"
}
`

const yamlDocument = `
desired:
  providers:
    - name: ocp
      type: openshift-origin
      zone: default
      hostname: ocp.example.com
      port: 8443
      token: s3cr3t
      verify_ssl: false
      monitoring: prometheus
      monitoring_hostname: prom.example.com
      monitoring_port: 443
  alerts:
    - description: High CPU
      db: ContainerNode
      expression:
        eval_method: mw_heap_used
        mode: internal
        options:
          value_mw_greater_than: 20
      options:
        notifications:
          delay_next_evaluation: 600
      enabled: true
  users:
    - userid: jdoe
      name: John Doe
      password: hunter2
      group: EvmGroup-user
      email: jdoe@example.com
  custom_attributes:
    - entity_type: provider
      entity_name: ocp
      attributes:
        - name: owner
          value: team-a
        - name: tier
          value: gold
          section: metadata
  tag_assignments:
    - resource: vm
      resource_name: web-01
      state: absent
      tags:
        - category: environment
          name: prod
  policy_assignments:
    - entity: policy profile
      entity_name: OpenSCAP profile
      resource: provider
      resource_name: ocp
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_MatchesYAML(t *testing.T) {
	t.Setenv("MIQ_TEST_TOKEN", "s3cr3t")
	dir := t.TempDir()
	writeFile(t, dir, "password.txt", "hunter2\n")
	hclPath := writeFile(t, dir, "desired.hcl", hclDocument)
	yamlPath := writeFile(t, dir, "desired.yaml", yamlDocument)

	fromHCL, err := NewLoader(log.Discard()).LoadFile(context.Background(), hclPath)
	require.NoError(t, err)
	fromYAML, err := config.LoadDesiredYAML(yamlPath)
	require.NoError(t, err)

	fromHCL.ApplyDefaults()
	fromYAML.ApplyDefaults()

	// Numbers inside free-form maps differ in Go type between the two
	// sources; compare those by value and the rest structurally.
	require.Len(t, fromHCL.Alerts, 1)
	require.Len(t, fromYAML.Alerts, 1)
	assert.EqualValues(t, 20, fromHCL.Alerts[0].Expression["options"].(map[string]any)["value_mw_greater_than"])
	assert.EqualValues(t, 20, fromYAML.Alerts[0].Expression["options"].(map[string]any)["value_mw_greater_than"])
	fromHCL.Alerts[0].Expression, fromYAML.Alerts[0].Expression = nil, nil
	fromHCL.Alerts[0].Options, fromYAML.Alerts[0].Options = nil, nil

	assert.Equal(t, fromYAML, fromHCL)
	assert.Equal(t, "s3cr3t", fromHCL.Providers[0].Token)
	assert.Equal(t, "hunter2", fromHCL.Users[0].Password)
	assert.Equal(t, domain.StateAbsent, fromHCL.TagAssignments[0].State)
}

func TestLoadFile_KeepsBlockOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "order.hcl", `
user "b" {
  name = "B"
}
user "a" {
  name = "A"
}
`)
	desired, err := NewLoader(log.Discard()).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, desired.Users, 2)
	assert.Equal(t, "b", desired.Users[0].UserID)
	assert.Equal(t, "a", desired.Users[1].UserID)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax error", content: `provider "x" {`},
		{name: "unknown block", content: `zone "default" {}`},
		{name: "nested block", content: "user \"a\" {\n  extra {\n  }\n}\n"},
		{name: "label repeated as attribute", content: "user \"a\" {\n  userid = \"b\"\n}\n"},
		{name: "unknown function", content: "user \"a\" {\n  name = nope()\n}\n"},
		{name: "unknown field", content: "user \"a\" {\n  nickname = \"x\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.hcl", tt.content)
			_, err := NewLoader(log.Discard()).LoadFile(context.Background(), path)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeDesiredParse, apperrors.GetCode(err))
		})
	}
}

func TestConvertCtyValue(t *testing.T) {
	tests := []struct {
		name     string
		val      cty.Value
		expected any
	}{
		{name: "null", val: cty.NullVal(cty.String), expected: nil},
		{name: "string", val: cty.StringVal("x"), expected: "x"},
		{name: "bool", val: cty.True, expected: true},
		{name: "whole number", val: cty.NumberIntVal(8443), expected: int64(8443)},
		{name: "fraction", val: cty.NumberFloatVal(1.5), expected: 1.5},
		{name: "object", val: cty.ObjectVal(map[string]cty.Value{"a": cty.StringVal("b")}), expected: map[string]any{"a": "b"}},
		{name: "tuple", val: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.True}), expected: []any{"a", true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertCtyValue(tt.val)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ConvertCtyValue(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}
