// Package lab models custom lab definitions: named sets of show commands
// with the output each host is expected to print.
package lab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newtron-network/newtverify/pkg/util"
)

// Scope restricts which device types a command is meant for.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeRouter Scope = "router"
	ScopeSwitch Scope = "switch"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeAll, ScopeRouter, ScopeSwitch:
		return true
	}
	return false
}

// Admits reports whether a device of deviceType may run a command of scope s.
func (s Scope) Admits(deviceType string) bool {
	return s == ScopeAll || strings.EqualFold(string(s), strings.TrimSpace(deviceType))
}

// Expectation is the output one host is expected to print for a command.
type Expectation struct {
	Hostname       string `yaml:"hostname" json:"hostname"`
	ExpectedOutput string `yaml:"expected_output" json:"expected_output"`
}

// Command is one show command of a lab.
type Command struct {
	Command      string        `yaml:"command" json:"command"`
	Scope        Scope         `yaml:"scope,omitempty" json:"scope,omitempty"`
	Order        int           `yaml:"order,omitempty" json:"order,omitempty"`
	Expectations []Expectation `yaml:"expectations" json:"expectations"`
}

// Definition is a named, reusable lab.
type Definition struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Commands    []Command `yaml:"commands" json:"commands"`
}

// OutputKey identifies the output of one command on one host.
type OutputKey struct {
	Hostname string
	Command  string
}

// Key builds the OutputKey for hostname and command, trimming both.
func Key(hostname, command string) OutputKey {
	return OutputKey{Hostname: strings.TrimSpace(hostname), Command: strings.TrimSpace(command)}
}

func (k OutputKey) String() string {
	return k.Hostname + ": " + k.Command
}

// ApplyDefaults fills in the scope and order of commands that leave them
// unset. Order defaults to the 1-based declaration position.
func (d *Definition) ApplyDefaults() {
	for i := range d.Commands {
		c := &d.Commands[i]
		if c.Scope == "" {
			c.Scope = ScopeAll
		}
		c.Scope = Scope(strings.ToLower(string(c.Scope)))
		if c.Order == 0 {
			c.Order = i + 1
		}
	}
}

// Validate checks the definition as a lab form would before saving it:
// id and name are required, there is at least one command, command text
// (trimmed) is unique and every expectation names a host.
func (d *Definition) Validate() error {
	b := &util.ValidationBuilder{}
	b.Add(strings.TrimSpace(d.ID) != "", "id is required")
	b.Add(strings.TrimSpace(d.Name) != "", "lab name is required")
	b.Add(len(d.Commands) > 0, "at least one command is required")

	seen := make(map[string]int)
	for i, c := range d.Commands {
		prefix := fmt.Sprintf("commands[%d]", i)
		text := strings.TrimSpace(c.Command)
		if text == "" {
			b.AddErrorf("%s: command is required", prefix)
		} else if first, dup := seen[text]; dup {
			b.AddErrorf("%s: duplicate command %q (first at commands[%d])", prefix, text, first)
		} else {
			seen[text] = i
		}

		if c.Scope != "" && !c.Scope.Valid() {
			b.AddErrorf("%s: scope must be all, router or switch, got %q", prefix, c.Scope)
		}
		if c.Order < 0 {
			b.AddErrorf("%s: order must not be negative", prefix)
		}
		if len(c.Expectations) == 0 {
			b.AddErrorf("%s: at least one expectation is required", prefix)
		}

		hosts := make(map[string]bool)
		for j, e := range c.Expectations {
			host := strings.TrimSpace(e.Hostname)
			if host == "" {
				b.AddErrorf("%s.expectations[%d]: hostname is required", prefix, j)
				continue
			}
			if hosts[host] {
				b.AddErrorf("%s.expectations[%d]: host %s listed twice", prefix, j, host)
			}
			hosts[host] = true
		}
	}
	return b.BuildAs(util.ErrInvalidLab)
}

// CheckScopes verifies that every expectation's host is of a device type
// its command's scope admits. deviceTypes maps hostname to "router" or
// "switch"; hosts absent from it are reported as unknown.
func (d *Definition) CheckScopes(deviceTypes map[string]string) error {
	b := &util.ValidationBuilder{}
	for i, c := range d.Commands {
		scope := c.Scope
		if scope == "" {
			scope = ScopeAll
		}
		for _, e := range c.Expectations {
			host := strings.TrimSpace(e.Hostname)
			typ, ok := deviceTypes[host]
			if !ok {
				b.AddErrorf("commands[%d]: unknown device %q", i, host)
				continue
			}
			if !scope.Admits(typ) {
				b.AddErrorf("commands[%d]: %q is scoped to %s devices but %s is a %s", i, strings.TrimSpace(c.Command), scope, host, typ)
			}
		}
	}
	return b.BuildAs(util.ErrInvalidLab)
}

// Ordered returns the commands sorted by Order. Commands with equal order
// keep their declaration order.
func (d *Definition) Ordered() []Command {
	out := make([]Command, len(d.Commands))
	copy(out, d.Commands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Hosts returns every host named by an expectation, sorted.
func (d *Definition) Hosts() []string {
	set := make(map[string]bool)
	for _, c := range d.Commands {
		for _, e := range c.Expectations {
			if h := strings.TrimSpace(e.Hostname); h != "" {
				set[h] = true
			}
		}
	}
	hosts := make([]string, 0, len(set))
	for h := range set {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// CommandsFor returns the trimmed command texts that have an expectation
// for hostname, in execution order.
func (d *Definition) CommandsFor(hostname string) []string {
	hostname = strings.TrimSpace(hostname)
	var cmds []string
	for _, c := range d.Ordered() {
		for _, e := range c.Expectations {
			if strings.TrimSpace(e.Hostname) == hostname {
				cmds = append(cmds, strings.TrimSpace(c.Command))
				break
			}
		}
	}
	return cmds
}
