package rules

import (
	"os"

	"gopkg.in/yaml.v3"

	"talkbot/internal/config"
)

type rulesFile struct {
	Rules []Spec `yaml:"rules"`
}

// Load compiles the rules listed in a YAML file:
//
//	rules:
//	  - pattern: "hi|hello"
//	    responses: ["Hello!"]
func Load(path string, opts ...Option) (*Responder, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.OpError{
			Op:   "rules.load",
			Kind: config.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var dto rulesFile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return nil, &config.OpError{
			Op:   "rules.load",
			Kind: config.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	r, err := Compile(dto.Rules, opts...)
	if err != nil {
		return nil, &config.OpError{
			Op:   "rules.compile",
			Kind: config.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return r, nil
}
