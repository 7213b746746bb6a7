// Package schema declares the HCL shapes of dashboard files. These structs
// are decoded with gohcl and then translated into the format-agnostic
// config model by the hcl_adapter package.
package schema

import "github.com/hashicorp/hcl/v2"

// Dashboard represents a top-level `dashboard` block.
type Dashboard struct {
	Name   string `hcl:"name,label"`
	Title  string `hcl:"title,optional"`
	Listen string `hcl:"listen,optional"`
}

// Section represents a `section` block grouping related dashboard blocks.
type Section struct {
	Name       string   `hcl:"name,label"`
	Replicated bool     `hcl:"replicated,optional"`
	Lazy       bool     `hcl:"lazy,optional"`
	Blocks     []*Block `hcl:"block,block"`
}

// Block represents a `block` declaration inside a section.
type Block struct {
	Name        string          `hcl:"name,label"`
	Handler     string          `hcl:"handler,optional"`
	AllowShared bool            `hcl:"allow_shared_output,optional"`
	Output      *Output         `hcl:"output,block"`
	Controls    []*Control      `hcl:"control,block"`
	Publishes   []*Publication  `hcl:"publish,block"`
	Subscribes  []*Subscription `hcl:"subscribe,block"`
}

// Output names the component property a block renders into.
type Output struct {
	Property string `hcl:"property"`
}

// Control represents a `control` block. Default stays an expression here so
// the adapter can evaluate and convert it to a native Go value.
type Control struct {
	Name     string         `hcl:"name,label"`
	Kind     string         `hcl:"kind"`
	Property string         `hcl:"property,optional"`
	Alias    string         `hcl:"alias,optional"`
	Default  hcl.Expression `hcl:"default,optional"`
}

// Publication represents a `publish` block feeding a named state.
type Publication struct {
	StateID  string         `hcl:"state,label"`
	Property string         `hcl:"property,optional"`
	Alias    string         `hcl:"alias,optional"`
	Default  hcl.Expression `hcl:"default,optional"`
}

// Subscription represents a `subscribe` block listening to a named state.
type Subscription struct {
	StateID string `hcl:"state,label"`
	Handler string `hcl:"handler,optional"`
}

// FileRoot is used to decode all possible top-level blocks from any file.
type FileRoot struct {
	Dashboards []*Dashboard `hcl:"dashboard,block"`
	Sections   []*Section   `hcl:"section,block"`
	Remain     hcl.Body     `hcl:",remain"`
}
