package intent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// batchFile is the on-disk form of an intent batch:
//
//	links:
//	  - kind: trunk
//	    hostname1: SW1
//	    hostname2: SW2
//	    interface1: Gi0/1
//	    interface2: Gi0/1
//	    vlans: [10, 20]
type batchFile struct {
	Links []yaml.Node `yaml:"links"`
}

type kindHeader struct {
	Kind string `yaml:"kind"`
}

var decoders = map[Domain]func(*yaml.Node) (Intent, error){
	DomainVLAN:           decodeAs[VLAN],
	DomainBridgePriority: decodeAs[BridgePriority],
	DomainConfigIP:       decodeAs[ConfigIP],
	DomainStaticRoute:    decodeAs[StaticRoute],
	DomainLoopback:       decodeAs[Loopback],
	DomainTrunk:          decodeAs[TrunkLink],
	DomainInterVLAN:      decodeAs[InterVLANLink],
	DomainSwitchHost:     decodeAs[SwitchHostLink],
}

func decodeAs[T Intent](n *yaml.Node) (Intent, error) {
	var v T
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	if nz, ok := any(&v).(interface{ normalize() }); ok {
		nz.normalize()
	}
	return v, nil
}

// LoadBatch reads a YAML intent batch file. It does not validate the
// intents; see ValidateBatch.
func LoadBatch(path string) ([]Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading intents %s: %w", path, err)
	}
	intents, err := ParseBatch(data)
	if err != nil {
		return nil, fmt.Errorf("parsing intents %s: %w", path, err)
	}
	return intents, nil
}

// ParseBatch decodes a YAML intent batch document.
func ParseBatch(data []byte) ([]Intent, error) {
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	intents := make([]Intent, 0, len(f.Links))
	for i := range f.Links {
		node := &f.Links[i]

		var h kindHeader
		if err := node.Decode(&h); err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
		if h.Kind == "" {
			return nil, fmt.Errorf("links[%d] (line %d): kind is required", i, node.Line)
		}
		decode, ok := decoders[Domain(h.Kind)]
		if !ok {
			return nil, fmt.Errorf("links[%d] (line %d): unknown kind %q", i, node.Line, h.Kind)
		}
		in, err := decode(node)
		if err != nil {
			return nil, fmt.Errorf("links[%d] (%s): %w", i, h.Kind, err)
		}
		intents = append(intents, in)
	}
	return intents, nil
}
