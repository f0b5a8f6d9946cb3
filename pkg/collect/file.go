package collect

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/state"
)

// FileStateSource serves actual state from a JSON state report (see
// state.DecodeReport). The file is read on every fetch.
type FileStateSource struct {
	Path string
}

func (s *FileStateSource) FetchState(_ context.Context, _ []intent.Intent) ([]*state.ActualState, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading state report %s: %w", s.Path, err)
	}
	states, err := state.DecodeReport(data)
	if err != nil {
		return nil, fmt.Errorf("decoding state report %s: %w", s.Path, err)
	}
	return states, nil
}

// CapturedOutput is one command's output as stored in a capture file.
type CapturedOutput struct {
	Hostname string `yaml:"hostname"`
	Command  string `yaml:"command"`
	Output   string `yaml:"output"`
}

type captureFile struct {
	Lab     string           `yaml:"lab,omitempty"`
	Outputs []CapturedOutput `yaml:"outputs"`
}

// FileOutputSource serves lab command output from a YAML capture file:
//
//	lab: vlan-lab
//	outputs:
//	  - hostname: SW1
//	    command: show vlan brief
//	    output: |
//	      10   sales   active
type FileOutputSource struct {
	Path string
}

// FetchOutput reads the capture. A capture recorded for a different lab
// is rejected.
func (s *FileOutputSource) FetchOutput(_ context.Context, def *lab.Definition) (map[lab.OutputKey]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading capture %s: %w", s.Path, err)
	}
	var f captureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing capture %s: %w", s.Path, err)
	}
	if f.Lab != "" && def != nil && f.Lab != def.ID {
		return nil, fmt.Errorf("capture %s was recorded for lab %q, not %q", s.Path, f.Lab, def.ID)
	}

	out := make(map[lab.OutputKey]string, len(f.Outputs))
	for _, o := range f.Outputs {
		out[lab.Key(o.Hostname, o.Command)] = o.Output
	}
	return out, nil
}

// WriteCapture saves outputs as a capture file FileOutputSource can read
// back. Entries are sorted by host, then command.
func WriteCapture(path, labID string, outputs map[lab.OutputKey]string) error {
	f := captureFile{Lab: labID}
	for k, v := range outputs {
		f.Outputs = append(f.Outputs, CapturedOutput{Hostname: k.Hostname, Command: k.Command, Output: v})
	}
	sort.Slice(f.Outputs, func(i, j int) bool {
		a, b := f.Outputs[i], f.Outputs[j]
		if a.Hostname != b.Hostname {
			return a.Hostname < b.Hostname
		}
		return a.Command < b.Command
	})

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding capture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing capture %s: %w", path, err)
	}
	return nil
}
