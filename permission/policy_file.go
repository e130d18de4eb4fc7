package permission

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyDocument is the on-disk form of a role map and route table.
//
//	permissions: [read_content, create_content]
//	roles:
//	  editor: [read_content, create_content]
//	  viewer: [read_content]
//	routes:
//	  - path: /create
//	    roles: [editor]
//	    fallback: /login
type PolicyDocument struct {
	Permissions []Permission          `yaml:"permissions"`
	Roles       map[Role][]Permission `yaml:"roles"`
	Routes      []Route               `yaml:"routes"`
}

// ParsePolicy decodes a YAML policy document, builds a frozen [Policy] and a
// validated [RouteTable]. Unknown fields are rejected.
func ParsePolicy(data []byte) (*Policy, *RouteTable, error) {
	var doc PolicyDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPolicyFile, err)
	}

	if len(doc.Permissions) == 0 {
		return nil, nil, fmt.Errorf("%w: no permissions declared", ErrInvalidPolicyFile)
	}
	if len(doc.Roles) == 0 {
		return nil, nil, fmt.Errorf("%w: no roles declared", ErrInvalidPolicyFile)
	}

	policy, err := Build(doc.Permissions, doc.Roles)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPolicyFile, err)
	}

	routes, err := NewRouteTable(doc.Routes...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPolicyFile, err)
	}
	if err := routes.Validate(policy); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPolicyFile, err)
	}

	return policy, routes, nil
}

// LoadPolicyFile reads and parses the YAML policy at path.
func LoadPolicyFile(path string) (*Policy, *RouteTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}
